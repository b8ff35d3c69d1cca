package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Spok95/tool-bot/internal/infra/metrics"
	"github.com/robfig/cron/v3"
)

// Expirer удаляет сессии, простаивающие дольше idle.
type Expirer interface {
	Expire(ctx context.Context, idle time.Duration) (int, error)
}

type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

func New(log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		log:  log,
	}
}

// AddDialogSweep регистрирует периодическую очистку брошенных диалогов.
func (s *Scheduler) AddDialogSweep(spec string, store Expirer, idle time.Duration) error {
	_, err := s.cron.AddFunc(spec, func() { s.sweep(store, idle) })
	return err
}

func (s *Scheduler) sweep(store Expirer, idle time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := store.Expire(ctx, idle)
	if err != nil {
		s.log.Error("dialog sweep failed", "err", err)
		return
	}
	if n > 0 {
		metrics.ExpiredDialogs.Add(float64(n))
		s.log.Info("expired idle dialogs", "count", n)
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
