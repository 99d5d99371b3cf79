// Package recorder fans a successful login out to the audit table and the
// message broker.
package recorder

import (
	"context"
	"log/slog"

	"github.com/forumkit/twofactor/internal/pkg/uid"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

type loginStore interface {
	InsertLoginLog(ctx context.Context, event entity.LoginEvent) error
}

type loginPublisher interface {
	PublishLoginVerified(ctx context.Context, event entity.LoginEvent) error
}

type Recorder struct {
	store     loginStore
	publisher loginPublisher
	ids       uid.NumberID
}

func New(store loginStore, publisher loginPublisher, ids uid.NumberID) *Recorder {
	return &Recorder{store: store, publisher: publisher, ids: ids}
}

// RecordLogin durably records the login, then announces it. The audit row
// is mandatory; the broker publish is best effort. Both carry the same
// event id so consumers can correlate with the audit trail.
func (r *Recorder) RecordLogin(ctx context.Context, event entity.LoginEvent) error {
	event.ID = r.ids.Generate()

	if err := r.store.InsertLoginLog(ctx, event); err != nil {
		return err
	}

	if err := r.publisher.PublishLoginVerified(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish login event",
			"user_id", event.UserID, "error", err)
	}

	return nil
}
