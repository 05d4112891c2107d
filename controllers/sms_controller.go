package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"duopet-backend/models"
	"duopet-backend/services"
)

type CodeVerifier interface {
	SendCode(ctx context.Context, phone string) error
	VerifyCode(ctx context.Context, phone, code string) (bool, error)
}

type SmsController struct {
	sms CodeVerifier
	log logrus.FieldLogger
}

func NewSmsController(sms CodeVerifier, log logrus.FieldLogger) *SmsController {
	return &SmsController{sms: sms, log: log}
}

// Send handles POST /sms/send
func (sc *SmsController) Send(c *gin.Context) {
	var req models.SmsSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	if err := sc.sms.SendCode(c.Request.Context(), req.Phone); err != nil {
		sc.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "인증번호가 발송되었습니다."})
}

// Verify handles POST /sms/verify
func (sc *SmsController) Verify(c *gin.Context) {
	var req models.SmsVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and code are required"})
		return
	}

	ok, err := sc.sms.VerifyCode(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		sc.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": ok})
}

func (sc *SmsController) writeError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrBadRequest) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sc.log.WithError(err).Error("sms request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
}
