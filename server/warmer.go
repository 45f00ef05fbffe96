package server

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Warmer refreshes the list cache on a cron schedule so a fallback is
// available before the first client request.
type Warmer struct {
	Cron   *cron.Cron
	server *Server
	log    *logrus.Logger
	ctx    context.Context
}

// NewWarmer registers the refresh job. schedule takes six fields (with
// seconds) or a descriptor such as "@every 5m".
func NewWarmer(ctx context.Context, s *Server, schedule string, log *logrus.Logger) (*Warmer, error) {
	w := &Warmer{
		Cron:   cron.New(cron.WithSeconds()),
		server: s,
		log:    log,
		ctx:    ctx,
	}
	if _, err := w.Cron.AddFunc(schedule, w.Warm); err != nil {
		return nil, fmt.Errorf("register warm task: %w", err)
	}
	return w, nil
}

// Warm runs one refresh now.
func (w *Warmer) Warm() {
	coins, err := w.server.RefreshCryptos(w.ctx)
	if err != nil {
		w.log.WithError(err).Warn("Cache warm failed")
		return
	}
	w.log.WithField("count", len(coins)).Debug("Cache warmed")
}

func (w *Warmer) Start() {
	w.Cron.Start()
	w.log.Info("Cache warmer started")
}

// Stop stops the schedule and waits for a running job.
func (w *Warmer) Stop() {
	<-w.Cron.Stop().Done()
	w.log.Info("Cache warmer stopped")
}
