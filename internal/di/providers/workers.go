package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/knodemy/lecture-server/internal/config"
	"github.com/knodemy/lecture-server/internal/logger"
	"github.com/knodemy/lecture-server/internal/service"
	"github.com/knodemy/lecture-server/internal/watcher"
)

// SchedulerHandle wraps the daily scheduler with shutdown capability.
type SchedulerHandle struct {
	*service.Scheduler
	cancel  context.CancelFunc
	started bool
}

// Shutdown implements do.Shutdownable.
func (h *SchedulerHandle) Shutdown() error {
	if h.started {
		h.cancel()
	}
	return nil
}

// ProvideScheduler provides the daily generation scheduler. When scheduling
// is disabled the scheduler exists but never runs; generation stays available
// through the API.
func ProvideScheduler(i do.Injector) (*SchedulerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	batch := do.MustInvoke[*service.Batch](i)

	sched := service.NewScheduler(batch, cfg.Schedule.HourUTC, log.Logger)
	handle := &SchedulerHandle{Scheduler: sched}

	if cfg.Schedule.Enabled {
		ctx, cancel := context.WithCancel(context.Background())
		handle.cancel = cancel
		handle.started = true
		go sched.Run(ctx)

		log.Info("Daily scheduler armed",
			"hour_utc", cfg.Schedule.HourUTC,
			"next_run", sched.NextRun(),
		)
	} else {
		log.Info("Daily scheduler disabled")
	}

	return handle, nil
}

// InboxHandle wraps the inbox watcher with shutdown capability.
type InboxHandle struct {
	watcher *watcher.Watcher
	cancel  context.CancelFunc
	started bool
}

// Shutdown implements do.Shutdownable.
func (h *InboxHandle) Shutdown() error {
	if !h.started {
		return nil
	}
	h.cancel()
	return h.watcher.Stop()
}

// ProvideInbox provides the drop-directory watcher when configured.
func ProvideInbox(i do.Injector) (*InboxHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Inbox.Enabled {
		return &InboxHandle{}, nil
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)

	w, err := watcher.New(cfg.Inbox.Path, log.Logger, watcher.Options{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	inbox, err := watcher.NewInbox(ctx, w, storeHandle.Store, cfg.Inbox.CourseID, log.Logger)
	if err != nil {
		cancel()
		w.Stop()
		return nil, err
	}

	go func() {
		if err := inbox.Run(ctx); err != nil && err != context.Canceled {
			log.Error("Inbox watcher stopped", "error", err)
		}
	}()

	log.Info("Inbox watcher started",
		"path", cfg.Inbox.Path,
		"course_id", cfg.Inbox.CourseID,
	)

	return &InboxHandle{watcher: w, cancel: cancel, started: true}, nil
}
