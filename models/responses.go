package models

// LoginResponse is returned by password login
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
	Nickname     string `json:"nickname"`
	Role         string `json:"role"`
}

// SessionStatus is returned by GET /session/check
type SessionStatus struct {
	RemainingTimeMs int64 `json:"remainingTimeMs"`
	ShowExtendPopup bool  `json:"showExtendPopup"`
}

// SuspendRequest is the body of POST /admin/users/:id/suspend
type SuspendRequest struct {
	Action string `json:"action" binding:"required"`
}

type SmsSendRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type SmsVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}
