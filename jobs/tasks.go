// Package jobs contains background task definitions and the Asynq worker
// that processes them.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/essp-platform/essp/internal/auth"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge removes expired session records from Postgres.
	TaskSessionPurge = "session:purge"
	// TaskAuditRetention trims audit log entries past the retention window.
	TaskAuditRetention = "audit:retention"
)

// NewSessionPurgeTask constructs the session purge task.
func NewSessionPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionPurge, nil)
}

// NewAuditRetentionTask constructs the audit retention task.
func NewAuditRetentionTask() *asynq.Task {
	return asynq.NewTask(TaskAuditRetention, nil)
}

// SessionPurger deletes expired session records.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

var _ SessionPurger = (*auth.Service)(nil)

// NewSessionPurgeHandler processes TaskSessionPurge tasks.
func NewSessionPurgeHandler(purger SessionPurger, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		removed, err := purger.PurgeExpiredSessions(ctx, time.Now())
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("purged expired sessions", slog.Int64("removed", removed))
		}
		return nil
	}
}

// DefaultAuditRetention keeps a year of audit history.
const DefaultAuditRetention = 365 * 24 * time.Hour

// NewAuditRetentionHandler processes TaskAuditRetention tasks.
func NewAuditRetentionHandler(pool *pgxpool.Pool, retention time.Duration, logger *slog.Logger) asynq.HandlerFunc {
	if retention <= 0 {
		retention = DefaultAuditRetention
	}
	return func(ctx context.Context, t *asynq.Task) error {
		cutoff := time.Now().Add(-retention)
		tag, err := pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("trimmed audit logs", slog.Int64("removed", tag.RowsAffected()), slog.Time("cutoff", cutoff))
		}
		return nil
	}
}
