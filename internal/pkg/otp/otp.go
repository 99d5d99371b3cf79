// Package otp implements the one-time-password verifiers behind second-factor
// login. Each supported OTP type maps to a Provider with its own secret
// generation, token verification, and provisioning URI shape.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"time"

	"github.com/pquerna/otp"
)

// ErrUnknownType reports that no provider is registered for an OTP type.
type ErrUnknownType struct {
	Type string
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown otp type %q", e.Type)
}

// Provider is the capability contract a resolved OTP type exposes.
type Provider interface {
	// GenerateSecret creates a fresh enrollment secret in the encoding the
	// provider's verification expects.
	GenerateSecret() (string, error)
	// Verify reports whether the token is valid for the secret right now.
	Verify(token, secret string) bool
	// ProvisioningURI builds the otpauth key URI consumed by authenticator apps.
	ProvisioningURI(account, issuer, secret string) string
}

type clocker interface {
	Now() time.Time
}

// Config holds the algorithm parameters shared by the built-in providers.
// A Config is fixed at construction time; providers never mutate it.
type Config struct {
	// Period is the TOTP time step in seconds.
	Period uint
	// Skew is the number of adjacent TOTP windows accepted around now.
	Skew uint
	// Digits is the token length, 6 or 8.
	Digits otp.Digits
	// LookAhead bounds the HOTP counter window scanned during verification.
	LookAhead uint64
	// Clock provides the current time for time-based verification.
	Clock clocker
}

func (c Config) normalized() Config {
	if c.Digits != otp.DigitsSix && c.Digits != otp.DigitsEight {
		c.Digits = otp.DigitsSix
	}
	if c.Period == 0 {
		c.Period = 30
	}
	if c.Skew == 0 {
		c.Skew = 1
	}
	if c.LookAhead == 0 {
		c.LookAhead = 10
	}
	return c
}

// Registry resolves an OTP type identifier to its Provider.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry constructs a registry with the three built-in providers
// registered under their canonical type identifiers.
func NewRegistry(cfg Config) *Registry {
	cfg = cfg.normalized()

	return &Registry{providers: map[string]Provider{
		"totp":          NewTOTP(cfg),
		"hotp":          NewHOTP(cfg),
		"authenticator": NewAuthenticator(cfg),
	}}
}

// Resolve returns the provider for the given type identifier.
func (r *Registry) Resolve(otpType string) (Provider, error) {
	provider, ok := r.providers[otpType]
	if !ok {
		return nil, &ErrUnknownType{Type: otpType}
	}

	return provider, nil
}

// Secrets stay within the base32 alphabet so every verifier can decode them.
const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// randomSecret produces an n-character secret from a cryptographically
// secure source.
func randomSecret(n int) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(secretAlphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = secretAlphabet[idx.Int64()]
	}

	return string(buf), nil
}

func keyURI(otpauthType, account, issuer, secret string, params url.Values) string {
	params.Set("secret", secret)
	params.Set("issuer", issuer)

	u := url.URL{
		Scheme:   "otpauth",
		Host:     otpauthType,
		Path:     "/" + issuer + ":" + account,
		RawQuery: params.Encode(),
	}

	return u.String()
}
