package controllers

import (
	"github.com/gin-gonic/gin"

	"duopet-backend/services"
)

// User-facing messages
const (
	msgLoginRequired  = "아이디와 비밀번호를 입력하세요."
	msgBadCredentials = "아이디 또는 비밀번호가 올바르지 않습니다."
	msgSuspended      = "로그인 정지된 계정입니다. 관리자에게 문의하세요."
	msgLoginFailed    = "로그인 처리 중 오류가 발생했습니다."
	msgLogoutOK       = "로그아웃 성공"
	msgLogoutBad      = "유효하지 않은 요청"
	msgLogoutFailed   = "로그아웃 처리 중 오류 발생"
	msgInternal       = "internal server error"
)

func clientInfo(c *gin.Context) services.ClientInfo {
	return services.ClientInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
