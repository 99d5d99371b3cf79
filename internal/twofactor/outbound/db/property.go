package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// GetProperty reads one named property of the user record.
func (s *DB) GetProperty(ctx context.Context, userID int64, name string) (_ string, _ bool, err error) {
	ctx, span := s.startSpan(ctx, "GetProperty")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT value
		FROM twofactor_user_properties
		WHERE user_id = $1 AND name = $2`

	var value string
	err = s.conn.QueryRow(ctx, query, userID, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.mapError(err)
	}

	return value, true, nil
}

// SetProperty writes one named property, replacing any previous value.
func (s *DB) SetProperty(ctx context.Context, userID int64, name, value string) (err error) {
	ctx, span := s.startSpan(ctx, "SetProperty")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO twofactor_user_properties (user_id, name, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, name)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	_, err = s.conn.Exec(ctx, query, userID, name, value)
	err = s.mapError(err)
	return err
}

// DeleteProperty removes one named property. Deleting a property that does
// not exist is not an error.
func (s *DB) DeleteProperty(ctx context.Context, userID int64, name string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteProperty")
	defer func() { s.endSpan(span, err) }()

	const query = `
		DELETE FROM twofactor_user_properties
		WHERE user_id = $1 AND name = $2`

	_, err = s.conn.Exec(ctx, query, userID, name)
	err = s.mapError(err)
	return err
}
