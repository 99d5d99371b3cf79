package usecase

import (
	"testing"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/pkg/mfa"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

func TestStatus(t *testing.T) {
	t.Run("NotEnrolled", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.uc.Status(sessionCtx(7, "alice", entity.FactorPassword))
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if out.Enrolled {
			t.Fatalf("expected not enrolled")
		}
	})

	t.Run("EnrolledWithCodes", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		enroll(t, env, 7, "alice")
		ctx := sessionCtx(7, "alice", entity.FactorPassword)

		// Act
		out, err := env.uc.Status(ctx)

		// Assert
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if !out.Enrolled || out.Type != "totp" {
			t.Fatalf("expected totp enrollment, got %+v", out)
		}
		if out.BackupCodesRemaining != mfa.SetSize {
			t.Fatalf("expected %d remaining codes, got %d", mfa.SetSize, out.BackupCodesRemaining)
		}
	})
}

func TestRegenerateBackupCodes(t *testing.T) {
	t.Run("ReplacesOldSet", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		enrollment := enroll(t, env, 7, "alice")
		ctx := sessionCtx(7, "alice", entity.FactorSecond)

		// Act
		out, err := env.uc.RegenerateBackupCodes(ctx)

		// Assert
		if err != nil {
			t.Fatalf("regenerate: %v", err)
		}
		if len(out.BackupCodes) != mfa.SetSize {
			t.Fatalf("expected %d codes, got %d", mfa.SetSize, len(out.BackupCodes))
		}

		// Old codes stop working.
		_, err = env.uc.Verify(sessionCtx(7, "alice", entity.FactorPassword), VerifyInput{Token: enrollment.BackupCodes[0]})
		if reasonOf(t, err) != goerror.ReasonSecondFactorInvalid {
			t.Fatalf("expected replaced code to be rejected, got %v", err)
		}

		// New codes work.
		if _, err := env.uc.Verify(sessionCtx(7, "alice", entity.FactorPassword), VerifyInput{Token: out.BackupCodes[0]}); err != nil {
			t.Fatalf("new code rejected: %v", err)
		}
	})

	t.Run("RequiresSecondFactor", func(t *testing.T) {
		env := newTestEnv(t)
		enroll(t, env, 7, "alice")

		_, err := env.uc.RegenerateBackupCodes(sessionCtx(7, "alice", entity.FactorPassword))
		if reasonOf(t, err) != goerror.ReasonAccessDenied {
			t.Fatalf("expected access-denied reason, got %v", err)
		}
	})

	t.Run("RequiresEnrollment", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.RegenerateBackupCodes(sessionCtx(7, "alice", entity.FactorSecond))
		if reasonOf(t, err) != goerror.ReasonMissingOTPSecret {
			t.Fatalf("expected missing-otp-secret reason, got %v", err)
		}
	})
}

func TestDisable(t *testing.T) {
	t.Run("RemovesEnrollment", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		enroll(t, env, 7, "alice")

		// Act
		if err := env.uc.Disable(sessionCtx(7, "alice", entity.FactorSecond)); err != nil {
			t.Fatalf("disable: %v", err)
		}

		// Assert
		if len(env.props.values) != 0 {
			t.Fatalf("expected all enrollment properties removed, got %v", env.props.values)
		}

		out, err := env.uc.Status(sessionCtx(7, "alice", entity.FactorPassword))
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if out.Enrolled {
			t.Fatalf("expected not enrolled after disable")
		}
	})

	t.Run("RequiresSecondFactor", func(t *testing.T) {
		env := newTestEnv(t)
		enroll(t, env, 7, "alice")

		err := env.uc.Disable(sessionCtx(7, "alice", entity.FactorPassword))
		if reasonOf(t, err) != goerror.ReasonAccessDenied {
			t.Fatalf("expected access-denied reason, got %v", err)
		}
	})
}
