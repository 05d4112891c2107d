package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"duopet-backend/middleware"
	"duopet-backend/models"
	"duopet-backend/services"
)

type LoginService interface {
	Login(ctx context.Context, loginID, password string, client services.ClientInfo) (*models.LoginResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

type Reissuer interface {
	Reissue(ctx context.Context, req services.ReissueRequest) (*services.ReissueResult, error)
}

type SessionChecker interface {
	Check(accessToken string) (*models.SessionStatus, error)
}

// AuthController serves login, logout, reissue and session checks.
type AuthController struct {
	auth    LoginService
	reissue Reissuer
	session SessionChecker
	log     logrus.FieldLogger
}

func NewAuthController(auth LoginService, reissue Reissuer, session SessionChecker, log logrus.FieldLogger) *AuthController {
	return &AuthController{auth: auth, reissue: reissue, session: session, log: log}
}

// Login handles POST /login
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgLoginRequired})
		return
	}

	resp, err := ac.auth.Login(c.Request.Context(), req.LoginID, req.Password, clientInfo(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgLoginRequired})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgBadCredentials})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": msgSuspended})
	default:
		ac.log.WithError(err).Error("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgLoginFailed})
	}
}

// Logout handles POST /logout. Every device of the user is signed out.
func (ac *AuthController) Logout(c *gin.Context) {
	token := middleware.BearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.String(http.StatusBadRequest, msgLogoutBad)
		return
	}

	if err := ac.auth.Logout(c.Request.Context(), token); err != nil {
		if errors.Is(err, services.ErrBadRequest) {
			c.String(http.StatusBadRequest, msgLogoutBad)
			return
		}
		ac.log.WithError(err).Error("logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgLogoutFailed})
		return
	}
	c.String(http.StatusOK, msgLogoutOK)
}

// Reissue handles POST /reissue
func (ac *AuthController) Reissue(c *gin.Context) {
	req := services.ReissueRequest{
		AccessToken:  middleware.BearerToken(c.GetHeader("Authorization")),
		RefreshToken: middleware.BearerToken(c.GetHeader(middleware.HeaderRefreshToken)),
		Extend:       strings.EqualFold(strings.TrimSpace(c.GetHeader(middleware.HeaderExtendLogin)), "true"),
		Client:       clientInfo(c),
	}

	res, err := ac.reissue.Reissue(c.Request.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrBadRequest):
		c.String(http.StatusBadRequest, "Invalid tokens")
		return
	case errors.Is(err, services.ErrSessionExpired):
		c.Header(middleware.HeaderTokenExpired, "RefreshToken")
		c.String(http.StatusUnauthorized, "Login session expired")
		return
	case errors.Is(err, services.ErrUnauthorized):
		c.String(http.StatusUnauthorized, "Invalid or revoked session")
		return
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": msgSuspended})
		return
	default:
		ac.log.WithError(err).Error("reissue failed")
		c.String(http.StatusInternalServerError, "Failed to reissue token")
		return
	}

	switch res.Outcome {
	case services.OutcomeExtended:
		setTokenHeaders(c, res)
		c.String(http.StatusOK, "Access token reissued by user request")
	case services.OutcomeRenewed:
		setTokenHeaders(c, res)
		c.String(http.StatusOK, "Access token reissued")
	default:
		c.String(http.StatusOK, "Tokens still valid")
	}
}

func setTokenHeaders(c *gin.Context, res *services.ReissueResult) {
	c.Header("Authorization", "Bearer "+res.AccessToken)
	c.Header(middleware.HeaderRefreshTokenOut, "Bearer "+res.RefreshToken)
	c.Header("Access-Control-Expose-Headers", "Authorization, "+middleware.HeaderRefreshTokenOut)
}

// SessionCheck handles GET /session/check
func (ac *AuthController) SessionCheck(c *gin.Context) {
	token := middleware.BearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
		return
	}

	status, err := ac.session.Check(token)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, status)
	case errors.Is(err, services.ErrTokenExpired):
		c.Header(middleware.HeaderTokenExpired, "AccessToken")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access token expired"})
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
	}
}
