package observability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/persistence"
)

// LoginActivityRecorder keeps lightweight login activity in Redis: a
// per-user login counter and the last successful login timestamp. It is an
// event subscriber, so a Redis outage degrades to a warning and never
// touches the auth flow itself.
type LoginActivityRecorder struct {
	redis  *persistence.Redis
	logger *zap.Logger
}

// NewLoginActivityRecorder builds a recorder.
func NewLoginActivityRecorder(redis *persistence.Redis, logger *zap.Logger) *LoginActivityRecorder {
	return &LoginActivityRecorder{redis: redis, logger: logger}
}

// Register subscribes the recorder to the dispatcher.
func (r *LoginActivityRecorder) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTypeLoginSucceeded, r.recordLogin)
}

func (r *LoginActivityRecorder) recordLogin(ctx context.Context, event events.Event) error {
	if r.redis == nil || r.redis.Client == nil {
		return nil
	}

	client := r.redis.Client
	if err := client.Incr(ctx, "auth:logins:"+event.UserID).Err(); err != nil {
		r.logger.Warn("failed to record login count", zap.Error(err))
		return err
	}
	if err := client.Set(ctx, "auth:last_login:"+event.UserID,
		event.OccurredAt.Format(time.RFC3339), 0).Err(); err != nil {
		r.logger.Warn("failed to record last login", zap.Error(err))
		return err
	}
	return nil
}

// AuditLogger logs auth events through zap.
type AuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger builds an audit logger.
func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// Register subscribes the audit logger to all auth events.
func (a *AuditLogger) Register(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventTypeLoginSucceeded,
		events.EventTypeLoginFailed,
		events.EventTypeUserRegistered,
		events.EventTypePasswordChanged,
	} {
		dispatcher.Subscribe(eventType, a.log)
	}
}

func (a *AuditLogger) log(_ context.Context, event events.Event) error {
	a.logger.Info("auth event",
		zap.String("type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
