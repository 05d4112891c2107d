package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"duopet-backend/services"
)

const sessionStateKey = "oauth_state"

type SocialLogin interface {
	AuthCodeURL(p services.Provider, state string) (string, error)
	Complete(ctx context.Context, p services.Provider, code string, client services.ClientInfo) (*services.SocialLoginResult, error)
	RedirectURL(res *services.SocialLoginResult) string
}

// SocialController runs the browser side of provider login. The state
// parameter lives in the cookie session between the two legs.
type SocialController struct {
	social SocialLogin
	log    logrus.FieldLogger
}

func NewSocialController(social SocialLogin, log logrus.FieldLogger) *SocialController {
	return &SocialController{social: social, log: log}
}

// Authorize handles GET /oauth2/authorization/:provider
func (sc *SocialController) Authorize(c *gin.Context) {
	provider, err := services.ParseProvider(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported provider"})
		return
	}

	state := uuid.NewString()
	consent, err := sc.social.AuthCodeURL(provider, state)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionStateKey, state)
	if err := session.Save(); err != nil {
		sc.log.WithError(err).Error("failed to save oauth state")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.Redirect(http.StatusFound, consent)
}

// Callback handles GET /login/oauth2/code/:provider
func (sc *SocialController) Callback(c *gin.Context) {
	provider, err := services.ParseProvider(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported provider"})
		return
	}

	session := sessions.Default(c)
	expected, _ := session.Get(sessionStateKey).(string)
	session.Delete(sessionStateKey)
	_ = session.Save()
	if expected == "" || c.Query("state") != expected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	if e := c.Query("error"); e != "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": e})
		return
	}

	res, err := sc.social.Complete(c.Request.Context(), provider, c.Query("code"), clientInfo(c))
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, sc.social.RedirectURL(res))
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": msgSuspended})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "social login failed"})
	default:
		sc.log.WithError(err).WithField("provider", provider).Error("social login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}
