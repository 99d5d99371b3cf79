package otp

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"

	"github.com/forumkit/twofactor/internal/pkg/clock"
)

func testConfig() Config {
	return Config{Clock: clock.NewStatic(time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC))}
}

func TestRegistryResolve(t *testing.T) {
	registry := NewRegistry(testConfig())

	t.Run("KnownTypes", func(t *testing.T) {
		for _, name := range []string{"totp", "hotp", "authenticator"} {
			provider, err := registry.Resolve(name)
			if err != nil {
				t.Fatalf("resolve %q: %v", name, err)
			}
			if provider == nil {
				t.Fatalf("resolve %q returned nil provider", name)
			}
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		provider, err := registry.Resolve("bogus")
		if provider != nil {
			t.Fatalf("expected nil provider for unknown type")
		}

		var unknownErr *ErrUnknownType
		if err == nil {
			t.Fatalf("expected error for unknown type")
		}
		if !strings.Contains(err.Error(), "bogus") {
			t.Fatalf("error should name the unknown type, got %q", err.Error())
		}
		if !errors.As(err, &unknownErr) {
			t.Fatalf("expected *ErrUnknownType, got %T", err)
		}
	})
}

func TestTOTPVerify(t *testing.T) {
	// Arrange
	cfg := testConfig()
	provider := NewTOTP(cfg)

	secret, err := provider.GenerateSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	if len(secret) != 32 {
		t.Fatalf("expected 32-character secret, got %d", len(secret))
	}

	token, err := totp.GenerateCodeCustom(secret, cfg.Clock.Now(), totp.ValidateOpts{
		Period: 30,
		Digits: 6,
	})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	// Act & Assert
	if !provider.Verify(token, secret) {
		t.Fatalf("expected current-window token to verify")
	}
	if provider.Verify("000000", secret) {
		t.Fatalf("expected bogus token to fail")
	}
}

func TestHOTPVerify(t *testing.T) {
	// Arrange
	provider := NewHOTP(testConfig())

	secret, err := provider.GenerateSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}

	token, err := hotp.GenerateCodeCustom(secret, 3, hotp.ValidateOpts{Digits: 6})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	// Act & Assert
	if !provider.Verify(token, secret) {
		t.Fatalf("expected token within look-ahead window to verify")
	}

	farToken, err := hotp.GenerateCodeCustom(secret, 500, hotp.ValidateOpts{Digits: 6})
	if err != nil {
		t.Fatalf("generate far token: %v", err)
	}
	if provider.Verify(farToken, secret) {
		t.Fatalf("expected token beyond look-ahead window to fail")
	}
}

func TestAuthenticatorSecret(t *testing.T) {
	provider := NewAuthenticator(testConfig())

	secret, err := provider.GenerateSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	// 20 bytes base32 without padding.
	if len(secret) != 32 {
		t.Fatalf("expected 32-character secret, got %d", len(secret))
	}
	if strings.ContainsAny(secret, "=") {
		t.Fatalf("secret must not carry base32 padding")
	}
}

func TestProvisioningURI(t *testing.T) {
	registry := NewRegistry(testConfig())

	t.Run("TimeBased", func(t *testing.T) {
		provider, _ := registry.Resolve("totp")

		uri := provider.ProvisioningURI("alice", "Forumkit", "JBSWY3DPEHPK3PXP")

		if !strings.HasPrefix(uri, "otpauth://totp/Forumkit:alice?") {
			t.Fatalf("unexpected uri prefix: %q", uri)
		}
		for _, want := range []string{"secret=JBSWY3DPEHPK3PXP", "issuer=Forumkit", "algorithm=SHA1", "digits=6", "period=30"} {
			if !strings.Contains(uri, want) {
				t.Fatalf("uri missing %q: %q", want, uri)
			}
		}
	})

	t.Run("CounterBased", func(t *testing.T) {
		provider, _ := registry.Resolve("hotp")

		uri := provider.ProvisioningURI("alice", "Forumkit", "JBSWY3DPEHPK3PXP")

		if !strings.HasPrefix(uri, "otpauth://hotp/Forumkit:alice?") {
			t.Fatalf("unexpected uri prefix: %q", uri)
		}
		if !strings.Contains(uri, "counter=0") {
			t.Fatalf("uri missing initial counter: %q", uri)
		}
	})
}
