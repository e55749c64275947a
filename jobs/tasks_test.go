package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPurger struct {
	removed int64
	err     error
	before  time.Time
	calls   int
}

func (s *stubPurger) PurgeExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	s.calls++
	s.before = before
	return s.removed, s.err
}

func TestSessionPurgeHandler(t *testing.T) {
	purger := &stubPurger{removed: 3}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewSessionPurgeHandler(purger, logger)

	err := handler(context.Background(), NewSessionPurgeTask())
	require.NoError(t, err)
	assert.Equal(t, 1, purger.calls)
	assert.WithinDuration(t, time.Now(), purger.before, time.Minute)
}

func TestSessionPurgeHandlerPropagatesError(t *testing.T) {
	purger := &stubPurger{err: errors.New("db down")}
	handler := NewSessionPurgeHandler(purger, nil)

	err := handler(context.Background(), NewSessionPurgeTask())
	assert.Error(t, err, "failed purges must surface so asynq retries")
}

func TestTaskTypes(t *testing.T) {
	assert.Equal(t, TaskSessionPurge, NewSessionPurgeTask().Type())
	assert.Equal(t, TaskAuditRetention, NewAuditRetentionTask().Type())
}
