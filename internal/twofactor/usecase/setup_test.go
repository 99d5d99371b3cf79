package usecase

import (
	"regexp"
	"strings"
	"testing"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/pkg/mfa"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

func TestSetup(t *testing.T) {
	t.Run("TimeBased", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := sessionCtx(7, "alice", entity.FactorPassword)

		// Act
		out, err := env.uc.Setup(ctx, SetupInput{Type: "totp", AccountLabel: "alice@example.com"})

		// Assert
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
		if out.Type != "totp" {
			t.Fatalf("expected totp enrollment, got %q", out.Type)
		}
		if len(out.Secret) != 32 {
			t.Fatalf("expected 32-character secret, got %d", len(out.Secret))
		}
		if len(out.BackupCodes) != mfa.SetSize {
			t.Fatalf("expected %d backup codes, got %d", mfa.SetSize, len(out.BackupCodes))
		}
		if !strings.HasPrefix(out.URI, "otpauth://totp/Forumkit:alice@example.com?") {
			t.Fatalf("unexpected provisioning uri: %q", out.URI)
		}
		if out.QR != out.URI {
			t.Fatalf("default rendering must be the raw uri")
		}

		codePattern := regexp.MustCompile(`^[a-z]{5}-[a-z]{5}$`)
		for _, code := range out.BackupCodes {
			if !codePattern.MatchString(code) {
				t.Fatalf("unexpected code shape %q", code)
			}
		}

		// The stored set carries digests, never plaintext.
		raw, found, _ := env.props.GetProperty(ctx, 7, entity.PropertyBackupCodes)
		if !found {
			t.Fatalf("backup code set was not persisted")
		}
		set, err := entity.ParseBackupCodeSet(raw)
		if err != nil {
			t.Fatalf("parse persisted set: %v", err)
		}
		if len(set) != mfa.SetSize {
			t.Fatalf("expected %d persisted entries, got %d", mfa.SetSize, len(set))
		}
		for _, plain := range out.BackupCodes {
			if strings.Contains(raw, plain) {
				t.Fatalf("plaintext code %q leaked into storage", plain)
			}
		}
		for _, entry := range set {
			if entry.Version != mfa.KDFVersionPBKDF2 {
				t.Fatalf("expected entries issued at version %d, got %d", mfa.KDFVersionPBKDF2, entry.Version)
			}
		}

		// The stored secret is sealed, not the raw value.
		storedSecret, _, _ := env.props.GetProperty(ctx, 7, entity.PropertyOTPSecret)
		if storedSecret == out.Secret || strings.Contains(storedSecret, out.Secret) {
			t.Fatalf("otp secret persisted unencrypted")
		}
	})

	t.Run("DefaultAccountLabel", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.uc.Setup(sessionCtx(7, "alice", entity.FactorPassword), SetupInput{Type: "authenticator"})
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
		if !strings.HasPrefix(out.URI, "otpauth://totp/Forumkit:user?") {
			t.Fatalf("expected default account label, got %q", out.URI)
		}
	})

	t.Run("PNGFormat", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.uc.Setup(sessionCtx(7, "alice", entity.FactorPassword), SetupInput{Type: "totp", QRFormat: "png"})
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
		if !strings.HasPrefix(out.QR, "data:image/png;base64,") {
			t.Fatalf("expected png data uri rendering")
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := sessionCtx(7, "alice", entity.FactorPassword)

		_, err := env.uc.Setup(ctx, SetupInput{Type: "bogus"})

		if reasonOf(t, err) != goerror.ReasonUnknownOTPType {
			t.Fatalf("expected unknown-otp-type reason, got %v", err)
		}
		// Nothing may be persisted on failure.
		if len(env.props.values) != 0 {
			t.Fatalf("failed setup must not persist properties")
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Setup(t.Context(), SetupInput{Type: "totp"})
		if err == nil {
			t.Fatalf("expected error without session claims")
		}
	})
}
