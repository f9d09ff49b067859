// Package jobs runs periodic maintenance next to the HTTP server.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"restaurant-app/internal/domain/invitations"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/infra/logger"

	"github.com/jpillora/backoff"
	"gorm.io/gorm"
)

// InvitationRetention is how long finished invitations stay around for the
// members screen before they are purged.
const InvitationRetention = 30 * 24 * time.Hour

type Cleaner struct {
	DB          *gorm.DB
	MinInterval time.Duration
	MaxInterval time.Duration
}

// RunOnce purges stale rows as of now and reports how many were deleted.
func (cl *Cleaner) RunOnce(ctx context.Context, now time.Time) (int64, error) {
	inv, err := invitations.Cleanup(cl.DB.WithContext(ctx), now.Add(-InvitationRetention))
	if err != nil {
		return 0, err
	}

	res := cl.DB.WithContext(ctx).Where("expires_at < ?", now).Delete(&users.VerificationToken{})
	if res.Error != nil {
		return inv, res.Error
	}

	total := inv + res.RowsAffected
	if total > 0 {
		slog.InfoContext(ctx, "Maintenance cleanup", "invitations", inv, "verification_tokens", res.RowsAffected)
	}
	return total, nil
}

// Run loops until ctx is done. The interval backs off while there is nothing
// to delete and resets after a productive pass.
func (cl *Cleaner) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "jobs.cleanup"})

	b := &backoff.Backoff{
		Min:    cl.MinInterval,
		Max:    cl.MaxInterval,
		Factor: 2,
		Jitter: true,
	}

	slog.DebugContext(ctx, "Starting cleanup loop", "maxInterval", cl.MaxInterval.String())

	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case <-time.After(b.Duration()):
			deleted, err := cl.RunOnce(ctx, time.Now())
			if err != nil {
				slog.ErrorContext(ctx, "Cleanup failed", logger.ErrAttr(err))
				continue
			}
			if deleted > 0 {
				b.Reset()
			}
		}
	}

	slog.DebugContext(ctx, "Finished cleanup loop")
}
