package db

import (
	"context"
	"time"

	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

// InsertLoginLog appends one successful second-factor login to the audit
// trail.
func (s *DB) InsertLoginLog(ctx context.Context, event entity.LoginEvent) (err error) {
	ctx, span := s.startSpan(ctx, "InsertLoginLog")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO twofactor_login_logs (id, user_id, username, method, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = s.conn.Exec(ctx, query,
		event.ID,
		event.UserID,
		event.Username,
		event.Method,
		time.Unix(event.OccurredAt, 0).UTC(),
	)
	err = s.mapError(err)
	return err
}
