package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/forumkit/twofactor/internal/pkg/clock"
)

type staticUUID struct{}

func (staticUUID) Generate() string { return "00000000-0000-0000-0000-000000000001" }

func testConfig(now time.Time) Config {
	return Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "forumkit",
		Audiences: []string{"forumkit-web"},
		TTL:       30 * time.Minute,
		Clock:     clock.NewStatic(now),
		UUID:      staticUUID{},
	}
}

func TestNewHS512(t *testing.T) {
	t.Run("RejectsShortKey", func(t *testing.T) {
		// Arrange
		cfg := testConfig(time.Now())
		cfg.Secret = []byte("too short")

		// Act
		_, err := NewHS512(cfg)

		// Assert
		if !errors.Is(err, ErrSigningKeyTooShort) {
			t.Fatalf("NewHS512() error = %v, want ErrSigningKeyTooShort", err)
		}
	})
}

func TestSymmetric_GenerateVerify(t *testing.T) {
	// Token validation compares against wall-clock time, so issuance is
	// anchored at the real now.
	now := time.Now()

	t.Run("RoundTripCarriesFactor", func(t *testing.T) {
		// Arrange
		s, err := NewHS512(testConfig(now))
		if err != nil {
			t.Fatalf("NewHS512() error = %v", err)
		}

		// Act
		token, err := s.Generate(7, "alice", 2)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		claims, err := s.Verify(token)

		// Assert
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if claims.UserID != 7 || claims.Username != "alice" || claims.AuthFactor != 2 {
			t.Fatalf("Verify() claims = %+v, want user 7 alice at factor 2", claims)
		}
		if claims.Subject != "7" {
			t.Fatalf("Verify() subject = %q, want %q", claims.Subject, "7")
		}
	})

	t.Run("RejectsExpiredToken", func(t *testing.T) {
		// Arrange
		s, err := NewHS512(testConfig(now.Add(-time.Hour)))
		if err != nil {
			t.Fatalf("NewHS512() error = %v", err)
		}
		token, err := s.Generate(7, "alice", 1)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		// Act
		_, err = s.Verify(token)

		// Assert
		if !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("Verify() error = %v, want ErrTokenExpired", err)
		}
	})

	t.Run("RejectsForeignSignature", func(t *testing.T) {
		// Arrange
		issuerCfg := testConfig(now)
		issuer, err := NewHS512(issuerCfg)
		if err != nil {
			t.Fatalf("NewHS512() error = %v", err)
		}
		otherCfg := testConfig(now)
		otherCfg.Secret = []byte(strings.Repeat("x", 64))
		other, err := NewHS512(otherCfg)
		if err != nil {
			t.Fatalf("NewHS512() error = %v", err)
		}
		token, err := issuer.Generate(7, "alice", 1)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		// Act
		_, err = other.Verify(token)

		// Assert
		if err == nil {
			t.Fatal("Verify() error = nil, want signature mismatch")
		}
	})
}
