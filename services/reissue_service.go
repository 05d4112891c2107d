package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"duopet-backend/metrics"
	"duopet-backend/models"
)

// ReissueOutcome says what a successful reissue did.
type ReissueOutcome int

const (
	// OutcomeStillValid means both tokens are live and no extension was asked for.
	OutcomeStillValid ReissueOutcome = iota
	// OutcomeExtended means a new access token was minted on explicit request.
	OutcomeExtended
	// OutcomeRenewed means an expired access token was silently replaced.
	OutcomeRenewed
)

func (o ReissueOutcome) String() string {
	switch o {
	case OutcomeExtended:
		return "extended"
	case OutcomeRenewed:
		return "renewed"
	default:
		return "still_valid"
	}
}

type ReissueRequest struct {
	AccessToken  string
	RefreshToken string
	Extend       bool
	Client       ClientInfo
}

type ReissueResult struct {
	Outcome      ReissueOutcome
	AccessToken  string
	RefreshToken string
}

// ReissueService exchanges a live refresh token for a new access token.
type ReissueService struct {
	users    UserStore
	tokens   *TokenService
	sessions *RefreshService
	log      logrus.FieldLogger
}

func NewReissueService(users UserStore, tokens *TokenService, sessions *RefreshService, log logrus.FieldLogger) *ReissueService {
	return &ReissueService{users: users, tokens: tokens, sessions: sessions, log: log}
}

// Reissue decides between "still valid", an explicit extension, a silent
// renewal and a forced re-login. A lapsed refresh token always ends the
// session, whatever the state of the access token.
func (s *ReissueService) Reissue(ctx context.Context, req ReissueRequest) (*ReissueResult, error) {
	if strings.TrimSpace(req.AccessToken) == "" || strings.TrimSpace(req.RefreshToken) == "" {
		return nil, ErrBadRequest
	}

	access, err := s.tokens.Verify(req.AccessToken, models.CategoryAccess)
	if err != nil {
		s.count("rejected")
		return nil, fmt.Errorf("%w: access token: %v", ErrUnauthorized, err)
	}
	refresh, err := s.tokens.Verify(req.RefreshToken, models.CategoryRefresh)
	if err != nil {
		s.count("rejected")
		return nil, fmt.Errorf("%w: refresh token: %v", ErrUnauthorized, err)
	}
	if access.Subject != refresh.Subject || access.UserNo != refresh.UserNo {
		s.count("rejected")
		return nil, fmt.Errorf("%w: token owners differ", ErrUnauthorized)
	}

	accessExpired := s.tokens.ClaimsExpired(access)
	refreshExpired := s.tokens.ClaimsExpired(refresh)
	logger := s.log.WithFields(logrus.Fields{
		"user_id":         refresh.UserNo,
		"access_expired":  accessExpired,
		"refresh_expired": refreshExpired,
		"extend":          req.Extend,
	})

	if refreshExpired {
		if err := s.sessions.Revoke(ctx, refresh.UserNo, req.RefreshToken); err != nil {
			logger.WithError(err).Warn("could not drop expired refresh record")
		}
		s.count("session_expired")
		return nil, ErrSessionExpired
	}

	if !accessExpired && !req.Extend {
		s.count(OutcomeStillValid.String())
		return &ReissueResult{Outcome: OutcomeStillValid}, nil
	}

	outcome := OutcomeRenewed
	if !accessExpired {
		outcome = OutcomeExtended
	}

	newAccess, err := s.renew(ctx, refresh, req)
	if err != nil {
		s.count("rejected")
		return nil, err
	}

	logger.WithField("outcome", outcome.String()).Info("access token reissued")
	s.count(outcome.String())
	return &ReissueResult{Outcome: outcome, AccessToken: newAccess, RefreshToken: req.RefreshToken}, nil
}

func (s *ReissueService) renew(ctx context.Context, refresh *models.Claims, req ReissueRequest) (string, error) {
	user, err := s.users.FindByID(ctx, refresh.UserNo)
	if err != nil {
		return "", fmt.Errorf("%w: load user: %v", ErrInternal, err)
	}
	if user.IsSuspended() {
		return "", fmt.Errorf("%w: account suspended", ErrForbidden)
	}

	if err := s.sessions.Touch(ctx, user.ID, req.RefreshToken, req.Client); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	access, _, err := s.tokens.Issue(user, models.CategoryAccess)
	if err != nil {
		return "", fmt.Errorf("%w: issue access token: %v", ErrInternal, err)
	}
	return access, nil
}

func (s *ReissueService) count(outcome string) {
	metrics.ReissueOutcomes.WithLabelValues(outcome).Inc()
}
