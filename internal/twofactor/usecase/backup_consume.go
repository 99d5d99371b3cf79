package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

// errMatchFound aborts the matching group once any entry matches.
var errMatchFound = errors.New("twofactor: backup code match found")

// consumeBackupCode spends the candidate token as a backup code: it locates
// a matching entry, removes exactly that entry, and persists the reduced
// set before reporting success. The per-user lock keeps two concurrent
// logins from both spending the same code.
func (s *Usecase) consumeBackupCode(ctx context.Context, session entity.Session, candidate string) error {
	ctx, span := s.startSpan(ctx, "ConsumeBackupCode")
	defer span.End()

	return s.locker.WithLock(ctx, fmt.Sprintf("twofactor:consume:%d", session.UserID), func(ctx context.Context) error {
		set, err := s.loadBackupCodeSet(ctx, session.UserID)
		if err != nil {
			return err
		}

		matched, found := s.findMatch(ctx, set, candidate)
		if !found {
			slog.WarnContext(ctx, "no backup code matched", "user_id", session.UserID, "remaining", len(set))
			return goerror.NewBusinessReason("Invalid OTP value supplied", goerror.CodeUnauthorized, goerror.ReasonSecondFactorInvalid)
		}

		serialized, err := set.Remove(matched).Serialize()
		if err != nil {
			slog.ErrorContext(ctx, "failed to serialize reduced backup code set", "user_id", session.UserID, "error", err)
			return goerror.NewServer(err)
		}

		// The reduced set must be durable before success is reported, so a
		// crash after the match can never re-enable the spent code.
		if err := s.props.SetProperty(ctx, session.UserID, entity.PropertyBackupCodes, serialized); err != nil {
			slog.ErrorContext(ctx, "failed to persist reduced backup code set", "user_id", session.UserID, "error", err)
			return goerror.NewServer(err)
		}

		slog.InfoContext(ctx, "backup code consumed", "user_id", session.UserID, "remaining", len(set)-1)

		return nil
	})
}

// loadBackupCodeSet reads the stored set. A missing property is an empty
// set; an undecodable one is a hard error.
func (s *Usecase) loadBackupCodeSet(ctx context.Context, userID int64) (entity.BackupCodeSet, error) {
	raw, found, err := s.props.GetProperty(ctx, userID, entity.PropertyBackupCodes)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load backup code property", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !found {
		return entity.BackupCodeSet{}, nil
	}

	set, err := entity.ParseBackupCodeSet(raw)
	if err != nil {
		slog.ErrorContext(ctx, "stored backup code set is malformed", "user_id", userID, "error", err)
		return nil, goerror.NewBusinessReason("stored backup codes are unreadable", goerror.CodeInternal, goerror.ReasonMalformedBackupData)
	}

	return set, nil
}

// findMatch derives the candidate's digest against every entry
// concurrently; the first match cancels the remaining attempts.
func (s *Usecase) findMatch(ctx context.Context, set entity.BackupCodeSet, candidate string) (entity.BackupCodeEntry, bool) {
	var (
		mu      sync.Mutex
		matched entity.BackupCodeEntry
		found   bool
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range set {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}

			if s.hasher.Verify(entry.KDFVersion(), candidate, entry.Salt, entry.Hash) {
				mu.Lock()
				if !found {
					matched, found = entry, true
				}
				mu.Unlock()
				return errMatchFound
			}
			return nil
		})
	}

	// errMatchFound is the cancellation signal, not a failure.
	_ = g.Wait()

	return matched, found
}
