package audit

import (
	"context"
	"sync"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	tableDownloadEvents = "download_events"
	asyncLogTimeout     = 2 * time.Second
)

// Status represents the outcome of a download request
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusDenied    Status = "denied"
	StatusFailed    Status = "failed"
)

// Event is one row of the download audit trail
type Event struct {
	ID        uuid.UUID
	RequestID string
	PostID    string
	ActorID   *string
	Bucket    string
	ObjectKey string
	Status    Status
	Reason    string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Logger writes download events to Postgres
type Logger struct {
	exec    executor
	builder squirrel.StatementBuilderType
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewLogger(exec executor, logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger:  logger,
	}
}

// Log records an audit event
func (l *Logger) Log(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query, args, err := l.builder.
		Insert(tableDownloadEvents).
		Columns(
			"id", "request_id", "post_id", "actor_id", "bucket", "object_key",
			"status", "reason", "ip_address", "user_agent", "created_at",
		).
		Values(
			event.ID,
			event.RequestID,
			event.PostID,
			event.ActorID,
			event.Bucket,
			event.ObjectKey,
			event.Status,
			event.Reason,
			event.IPAddress,
			event.UserAgent,
			event.CreatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}

	_, err = l.exec.Exec(ctx, query, args...)
	return err
}

// Record logs the event in the background so the request is never held up
// by the audit table. Failures are logged and dropped.
func (l *Logger) Record(event Event) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), asyncLogTimeout)
		defer cancel()

		if err := l.Log(ctx, &event); err != nil {
			l.logger.Warn("audit log failed",
				zap.String("request_id", event.RequestID),
				zap.String("post_id", event.PostID),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every event passed to Record has been written or dropped.
func (l *Logger) Wait() {
	l.wg.Wait()
}
