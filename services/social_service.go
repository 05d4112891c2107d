package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"duopet-backend/models"
)

// Provider names a supported OAuth2 identity provider.
type Provider string

const (
	ProviderKakao  Provider = "kakao"
	ProviderNaver  Provider = "naver"
	ProviderGoogle Provider = "google"
)

const defaultNaverName = "네이버사용자"

// ParseProvider maps a path segment to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderKakao, ProviderNaver, ProviderGoogle:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unsupported provider %q", ErrBadRequest, s)
	}
}

// Extractor returns the profile reader for the provider's user-info payload.
func (p Provider) Extractor() ProfileExtractor {
	switch p {
	case ProviderKakao:
		return kakaoExtractor{}
	case ProviderNaver:
		return naverExtractor{}
	default:
		return googleExtractor{}
	}
}

// ProfileExtractor reads identity fields out of a provider user-info document.
type ProfileExtractor interface {
	ExtractExternalID(attrs map[string]any) (string, error)
	ExtractEmail(attrs map[string]any) string
	ExtractDisplayName(attrs map[string]any) string
}

type kakaoExtractor struct{}

func (kakaoExtractor) ExtractExternalID(attrs map[string]any) (string, error) {
	return requiredString(attrs, "id")
}

func (kakaoExtractor) ExtractEmail(attrs map[string]any) string {
	return stringAt(attrs, "kakao_account", "email")
}

func (kakaoExtractor) ExtractDisplayName(attrs map[string]any) string {
	return stringAt(attrs, "kakao_account", "profile", "nickname")
}

type naverExtractor struct{}

func (naverExtractor) ExtractExternalID(attrs map[string]any) (string, error) {
	return requiredString(attrs, "response", "id")
}

func (naverExtractor) ExtractEmail(attrs map[string]any) string {
	return stringAt(attrs, "response", "email")
}

func (naverExtractor) ExtractDisplayName(attrs map[string]any) string {
	if name := stringAt(attrs, "response", "name"); name != "" {
		return name
	}
	return defaultNaverName
}

type googleExtractor struct{}

func (googleExtractor) ExtractExternalID(attrs map[string]any) (string, error) {
	return requiredString(attrs, "sub")
}

func (googleExtractor) ExtractEmail(attrs map[string]any) string {
	return stringAt(attrs, "email")
}

func (googleExtractor) ExtractDisplayName(attrs map[string]any) string {
	return stringAt(attrs, "name")
}

func requiredString(attrs map[string]any, path ...string) (string, error) {
	v := stringAt(attrs, path...)
	if v == "" {
		return "", fmt.Errorf("missing %s in user info", strings.Join(path, "."))
	}
	return v, nil
}

// stringAt walks nested objects and renders the leaf as a string.
func stringAt(attrs map[string]any, path ...string) string {
	var cur any = attrs
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}
	switch v := cur.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// OAuthProvider couples an oauth2 client config with the provider's user-info endpoint.
type OAuthProvider struct {
	Config      *oauth2.Config
	UserInfoURL string
}

type providerEndpoints struct {
	endpoint oauth2.Endpoint
	userInfo string
	scopes   []string
}

var wellKnown = map[Provider]providerEndpoints{
	ProviderKakao: {
		endpoint: oauth2.Endpoint{
			AuthURL:   "https://kauth.kakao.com/oauth/authorize",
			TokenURL:  "https://kauth.kakao.com/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		userInfo: "https://kapi.kakao.com/v2/user/me",
		scopes:   []string{"profile_nickname", "account_email"},
	},
	ProviderNaver: {
		endpoint: oauth2.Endpoint{
			AuthURL:   "https://nid.naver.com/oauth2.0/authorize",
			TokenURL:  "https://nid.naver.com/oauth2.0/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		userInfo: "https://openapi.naver.com/v1/nid/me",
	},
	ProviderGoogle: {
		endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		userInfo: "https://openidconnect.googleapis.com/v1/userinfo",
		scopes:   []string{"openid", "email", "profile"},
	},
}

// NewOAuthProvider configures p against its public endpoints. The callback
// is <callbackBase>/login/oauth2/code/<provider>.
func NewOAuthProvider(p Provider, clientID, clientSecret, callbackBase string) *OAuthProvider {
	known := wellKnown[p]
	return &OAuthProvider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  strings.TrimRight(callbackBase, "/") + "/login/oauth2/code/" + string(p),
			Endpoint:     known.endpoint,
			Scopes:       known.scopes,
		},
		UserInfoURL: known.userInfo,
	}
}

// SocialProfile is what a provider tells us about the user.
type SocialProfile struct {
	Provider    Provider
	ExternalID  string
	Email       string
	DisplayName string
}

// LoginID is the local login id for the profile.
func (p SocialProfile) LoginID() string {
	return string(p.Provider) + "_" + p.ExternalID
}

type SocialLoginResult struct {
	AccessToken  string
	RefreshToken string
	IsNew        bool
	Provider     Provider
}

// SocialService drives the authorization-code flow and maps provider
// identities onto local accounts.
type SocialService struct {
	providers   map[Provider]*OAuthProvider
	users       UserStore
	auth        *AuthService
	redirectURL string
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewSocialService(providers map[Provider]*OAuthProvider, users UserStore, auth *AuthService, redirectURL string, log logrus.FieldLogger, now func() time.Time) *SocialService {
	if now == nil {
		now = time.Now
	}
	return &SocialService{providers: providers, users: users, auth: auth, redirectURL: redirectURL, log: log, now: now}
}

func (s *SocialService) provider(p Provider) (*OAuthProvider, error) {
	op, ok := s.providers[p]
	if !ok || op.Config == nil || op.Config.ClientID == "" {
		return nil, fmt.Errorf("%w: provider %s not configured", ErrBadRequest, p)
	}
	return op, nil
}

// AuthCodeURL returns the consent page URL for p.
func (s *SocialService) AuthCodeURL(p Provider, state string) (string, error) {
	op, err := s.provider(p)
	if err != nil {
		return "", err
	}
	return op.Config.AuthCodeURL(state), nil
}

// Complete exchanges the code, loads the profile, finds or creates the
// account and opens a session for it.
func (s *SocialService) Complete(ctx context.Context, p Provider, code string, client ClientInfo) (*SocialLoginResult, error) {
	op, err := s.provider(p)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: missing authorization code", ErrBadRequest)
	}

	tok, err := op.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %v", ErrUnauthorized, err)
	}

	profile, err := s.fetchProfile(ctx, p, op, tok)
	if err != nil {
		return nil, err
	}

	user, isNew, err := s.findOrCreate(ctx, profile)
	if err != nil {
		return nil, err
	}

	if user.IsSuspended() {
		s.auth.record(ctx, loginEvent(user, user.LoginID, string(p), false, "suspended", client, s.now()))
		return nil, fmt.Errorf("%w: account suspended", ErrForbidden)
	}

	access, refresh, err := s.auth.OpenSession(ctx, user, client)
	if err != nil {
		return nil, err
	}
	s.auth.record(ctx, loginEvent(user, user.LoginID, string(p), true, "", client, s.now()))

	return &SocialLoginResult{AccessToken: access, RefreshToken: refresh, IsNew: isNew, Provider: p}, nil
}

func (s *SocialService) fetchProfile(ctx context.Context, p Provider, op *OAuthProvider, tok *oauth2.Token) (*SocialProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, op.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	resp, err := op.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch user info: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: user info status %d", ErrUnauthorized, resp.StatusCode)
	}

	attrs := map[string]any{}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("%w: decode user info: %v", ErrInternal, err)
	}

	ex := p.Extractor()
	externalID, err := ex.ExtractExternalID(attrs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return &SocialProfile{
		Provider:    p,
		ExternalID:  externalID,
		Email:       ex.ExtractEmail(attrs),
		DisplayName: ex.ExtractDisplayName(attrs),
	}, nil
}

func (s *SocialService) findOrCreate(ctx context.Context, profile *SocialProfile) (*models.User, bool, error) {
	loginID := profile.LoginID()
	user, err := s.users.FindByLoginID(ctx, loginID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// social accounts never log in with a password
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	nickname := profile.DisplayName
	if nickname == "" {
		nickname = loginID
	}
	user = &models.User{
		LoginID:    loginID,
		Password:   string(hashed),
		Nickname:   nickname,
		Email:      profile.Email,
		Role:       models.RoleUser,
		Status:     models.StatusSocialTemp,
		Provider:   string(profile.Provider),
		ProviderID: profile.ExternalID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("%w: create social user: %v", ErrInternal, err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "provider": profile.Provider}).Info("social user created")
	return user, true, nil
}

// RedirectURL builds the front-end landing URL carrying the issued tokens.
func (s *SocialService) RedirectURL(res *SocialLoginResult) string {
	q := url.Values{}
	q.Set("accessToken", res.AccessToken)
	q.Set("refreshToken", res.RefreshToken)
	q.Set("isNew", fmt.Sprint(res.IsNew))
	q.Set("provider", string(res.Provider))

	sep := "?"
	if strings.Contains(s.redirectURL, "?") {
		sep = "&"
	}
	return s.redirectURL + sep + q.Encode()
}
