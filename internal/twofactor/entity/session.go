package entity

// Property names under which second-factor state lives on the user record.
const (
	PropertyOTPType     = "2fa:otp:type"
	PropertyOTPSecret   = "2fa:otp:secret"
	PropertyBackupCodes = "2fa:backup:codes"
)

// Session is the per-login view of the caller, decoded from the session
// token. Factor and Authenticated advance only forward within one login.
type Session struct {
	UserID        int64
	Username      string
	Factor        AuthFactor
	Authenticated bool
}

// HasFirstFactor reports whether the session already passed the password
// check.
func (s Session) HasFirstFactor() bool {
	return s.Factor >= FactorPassword
}

// LoginEvent is published after every successful second-factor verification.
type LoginEvent struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Method     string `json:"method"` // "otp" or "backup_code"
	OccurredAt int64  `json:"occurred_at"`
	RemoteAddr string `json:"remote_addr,omitempty"`
}
