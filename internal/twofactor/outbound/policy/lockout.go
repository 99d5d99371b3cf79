// Package policy enriches terminal verification failures with
// deployment-level rules. The lockout transformer counts consecutive
// invalid second-factor attempts per user in Redis and converts the
// rejection into a rate-limit error once the budget is spent.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

// Config tunes the lockout window.
type Config struct {
	// MaxAttempts is how many invalid attempts are tolerated per window.
	MaxAttempts int64
	// Cooldown is the counting window and the lockout duration.
	Cooldown time.Duration
}

func (c Config) normalized() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = time.Minute
	}
	return c
}

// Lockout implements the login-error transformer.
type Lockout struct {
	redis *redis.Client
	cfg   Config
}

// NewLockout constructs a Lockout transformer.
func NewLockout(redisClient *redis.Client, cfg Config) *Lockout {
	return &Lockout{redis: redisClient, cfg: cfg.normalized()}
}

func (l *Lockout) key(userID int64) string {
	return fmt.Sprintf("twofactor:attempts:%d", userID)
}

// Transform counts the failed attempt and returns either the original
// rejection or a rate-limit error when the budget is exhausted. A counting
// failure never hides the rejection from the caller.
func (l *Lockout) Transform(ctx context.Context, err error, session entity.Session) error {
	if goerror.ReasonOf(err) != goerror.ReasonSecondFactorInvalid {
		return err
	}

	key := l.key(session.UserID)

	count, redisErr := l.redis.Incr(ctx, key).Result()
	if redisErr != nil {
		slog.WarnContext(ctx, "failed to count invalid second-factor attempt",
			"user_id", session.UserID, "username", session.Username, "error", redisErr)
		return err
	}
	if count == 1 {
		if expErr := l.redis.Expire(ctx, key, l.cfg.Cooldown).Err(); expErr != nil {
			slog.WarnContext(ctx, "failed to set attempt counter expiry",
				"user_id", session.UserID, "error", expErr)
		}
	}

	if count >= l.cfg.MaxAttempts {
		slog.WarnContext(ctx, "second-factor attempts exhausted",
			"user_id", session.UserID, "username", session.Username, "attempts", count)
		return goerror.NewBusinessReason("too many invalid attempts, try again later",
			goerror.CodeTooManyRequest, goerror.ReasonSecondFactorInvalid)
	}

	return err
}

// Reset clears the attempt counter after a successful verification so the
// budget only counts consecutive failures.
func (l *Lockout) Reset(ctx context.Context, session entity.Session) error {
	return l.redis.Del(ctx, l.key(session.UserID)).Err()
}
