package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"duopet-backend/middleware"
	"duopet-backend/models"
	"duopet-backend/services"
)

type AccountService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
}

type UserController struct {
	users AccountService
	log   logrus.FieldLogger
}

func NewUserController(users AccountService, log logrus.FieldLogger) *UserController {
	return &UserController{users: users, log: log}
}

// Signup handles POST /users/signup
func (uc *UserController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	user, err := uc.users.Signup(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, user)
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "이미 사용 중인 아이디입니다."})
	default:
		uc.log.WithError(err).Error("signup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

// CurrentUser returns the identity carried by the caller's access token.
func (uc *UserController) CurrentUser(c *gin.Context) {
	v, exists := c.Get(middleware.ContextClaims)
	claims, ok := v.(*models.Claims)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":   claims.UserNo,
		"loginId":  claims.Subject,
		"nickname": claims.Nickname,
		"role":     claims.Role,
	})
}
