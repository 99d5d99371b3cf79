package inbound

type SetupRequest struct {
	Type         string `json:"type"`
	AccountLabel string `json:"account_label"`
	QRFormat     string `json:"qr_format"`
}

type SetupResponse struct {
	Type        string   `json:"type"`
	Secret      string   `json:"secret"`
	BackupCodes []string `json:"backup_codes"`
	URI         string   `json:"uri"`
	QR          string   `json:"qr"`
}

type VerifyRequest struct {
	Token string `json:"token"`
}

type VerifyResponse struct {
	SessionToken string `json:"session_token"`
	Method       string `json:"method"`
}

type RegenerateBackupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

type StatusResponse struct {
	Enrolled             bool   `json:"enrolled"`
	Type                 string `json:"type,omitempty"`
	BackupCodesRemaining int    `json:"backup_codes_remaining"`
}

type DisableResponse struct{}

func (DisableResponse) Message() string {
	return "Two-factor authentication has been disabled."
}
