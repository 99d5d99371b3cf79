package otp

import (
	"crypto/rand"
	"encoding/base32"
	"net/url"
	"strconv"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Authenticator targets authenticator apps. It behaves as TOTP on the wire
// but generates its secret from raw random bytes, base32-encoded without
// padding the way most authenticator apps expect.
type Authenticator struct {
	cfg Config
}

// NewAuthenticator constructs the authenticator-app provider from an
// immutable Config.
func NewAuthenticator(cfg Config) *Authenticator {
	return &Authenticator{cfg: cfg.normalized()}
}

// GenerateSecret creates a base32 secret from 20 random bytes.
func (p *Authenticator) GenerateSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// Verify checks the token against the current time window.
func (p *Authenticator) Verify(token, secret string) bool {
	ok, err := totp.ValidateCustom(token, secret, p.cfg.Clock.Now(), totp.ValidateOpts{
		Period:    p.cfg.Period,
		Skew:      p.cfg.Skew,
		Digits:    p.cfg.Digits,
		Algorithm: otp.AlgorithmSHA1,
	})

	return ok && err == nil
}

// ProvisioningURI builds the otpauth://totp key URI.
func (p *Authenticator) ProvisioningURI(account, issuer, secret string) string {
	return keyURI("totp", account, issuer, secret, url.Values{
		"algorithm": {"SHA1"},
		"digits":    {strconv.Itoa(p.cfg.Digits.Length())},
		"period":    {strconv.FormatUint(uint64(p.cfg.Period), 10)},
	})
}
