package otp

import (
	"net/url"
	"strconv"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP verifies time-based one-time passwords per RFC 6238.
type TOTP struct {
	cfg Config
}

// NewTOTP constructs a time-based provider from an immutable Config.
func NewTOTP(cfg Config) *TOTP {
	return &TOTP{cfg: cfg.normalized()}
}

// GenerateSecret creates a 32-character base32 secret.
func (p *TOTP) GenerateSecret() (string, error) {
	return randomSecret(32)
}

// Verify checks the token against the current time window, allowing the
// configured skew.
func (p *TOTP) Verify(token, secret string) bool {
	ok, err := totp.ValidateCustom(token, secret, p.cfg.Clock.Now(), totp.ValidateOpts{
		Period:    p.cfg.Period,
		Skew:      p.cfg.Skew,
		Digits:    p.cfg.Digits,
		Algorithm: otp.AlgorithmSHA1,
	})

	return ok && err == nil
}

// ProvisioningURI builds the otpauth://totp key URI.
func (p *TOTP) ProvisioningURI(account, issuer, secret string) string {
	return keyURI("totp", account, issuer, secret, url.Values{
		"algorithm": {"SHA1"},
		"digits":    {strconv.Itoa(p.cfg.Digits.Length())},
		"period":    {strconv.FormatUint(uint64(p.cfg.Period), 10)},
	})
}
