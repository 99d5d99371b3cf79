package otp

import (
	"net/url"
	"strconv"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// HOTP verifies counter-based one-time passwords per RFC 4226.
//
// No counter state is tracked per user; verification scans a bounded window
// of counter values starting at zero, which matches how the enrolled
// authenticator advances from a fresh secret.
type HOTP struct {
	cfg Config
}

// NewHOTP constructs a counter-based provider from an immutable Config.
func NewHOTP(cfg Config) *HOTP {
	return &HOTP{cfg: cfg.normalized()}
}

// GenerateSecret creates a 32-character base32 secret.
func (p *HOTP) GenerateSecret() (string, error) {
	return randomSecret(32)
}

// Verify checks the token against counters within the look-ahead window.
func (p *HOTP) Verify(token, secret string) bool {
	for counter := uint64(0); counter <= p.cfg.LookAhead; counter++ {
		ok, err := hotp.ValidateCustom(token, counter, secret, hotp.ValidateOpts{
			Digits:    p.cfg.Digits,
			Algorithm: otp.AlgorithmSHA1,
		})
		if ok && err == nil {
			return true
		}
	}

	return false
}

// ProvisioningURI builds the otpauth://hotp key URI with the initial counter.
func (p *HOTP) ProvisioningURI(account, issuer, secret string) string {
	return keyURI("hotp", account, issuer, secret, url.Values{
		"algorithm": {"SHA1"},
		"digits":    {strconv.Itoa(p.cfg.Digits.Length())},
		"counter":   {"0"},
	})
}
