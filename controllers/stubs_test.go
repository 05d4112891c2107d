package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"duopet-backend/models"
	"duopet-backend/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func doJSON(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stubLogin struct {
	resp       *models.LoginResponse
	err        error
	logoutErr  error
	gotLoginID string
	gotClient  services.ClientInfo
	gotLogout  string
}

func (s *stubLogin) Login(_ context.Context, loginID, _ string, client services.ClientInfo) (*models.LoginResponse, error) {
	s.gotLoginID = loginID
	s.gotClient = client
	return s.resp, s.err
}

func (s *stubLogin) Logout(_ context.Context, accessToken string) error {
	s.gotLogout = accessToken
	return s.logoutErr
}

type stubReissuer struct {
	res *services.ReissueResult
	err error
	got services.ReissueRequest
}

func (s *stubReissuer) Reissue(_ context.Context, req services.ReissueRequest) (*services.ReissueResult, error) {
	s.got = req
	return s.res, s.err
}

type stubSession struct {
	status *models.SessionStatus
	err    error
}

func (s *stubSession) Check(string) (*models.SessionStatus, error) { return s.status, s.err }

type stubAccounts struct {
	user *models.User
	err  error
}

func (s *stubAccounts) Signup(context.Context, models.SignupRequest) (*models.User, error) {
	return s.user, s.err
}

type stubSuspension struct {
	until     *time.Time
	err       error
	gotID     int64
	gotAction string
}

func (s *stubSuspension) Suspend(_ context.Context, id int64, action string) (*time.Time, error) {
	s.gotID, s.gotAction = id, action
	return s.until, s.err
}

func (s *stubSuspension) Unsuspend(_ context.Context, id int64) error {
	s.gotID = id
	return s.err
}

type stubStats struct {
	stats *models.LoginStats
	err   error
}

func (s *stubStats) LoginStats(context.Context) (*models.LoginStats, error) { return s.stats, s.err }

type stubSms struct {
	sendErr  error
	verified bool
	err      error
}

func (s *stubSms) SendCode(context.Context, string) error { return s.sendErr }

func (s *stubSms) VerifyCode(context.Context, string, string) (bool, error) { return s.verified, s.err }
