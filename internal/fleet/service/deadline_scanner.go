package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/italsem/fleetd/internal/fleet/types"
)

// DeadlineScanner periodically sweeps the deadline ledger and logs what is
// expired or about to expire, so operators see upcoming work without
// opening the dashboard.  It runs as a background goroutine and stops via
// its context or Stop.
//
// A window of 0 days disables the scanner entirely.
type DeadlineScanner struct {
	reports  *ReportService
	window   int
	interval time.Duration
	log      *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// ScannerConfig holds the parameters for NewDeadlineScanner.
type ScannerConfig struct {
	// WindowDays is how far ahead the sweep looks.  0 disables the scanner.
	WindowDays int

	// IntervalHours is how often the sweep runs.  Defaults to 24.
	IntervalHours int
}

// NewDeadlineScanner creates a scanner but does not start it.
func NewDeadlineScanner(reports *ReportService, cfg ScannerConfig, log *zap.Logger) *DeadlineScanner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	return &DeadlineScanner{
		reports:  reports,
		window:   cfg.WindowDays,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start begins the background loop: one immediate sweep, then one per
// interval until ctx is cancelled or Stop is called.
func (s *DeadlineScanner) Start(ctx context.Context) {
	if s.window <= 0 {
		s.log.Info("deadline scanner disabled (window=0)")
		close(s.done)
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go s.loop(ctx)

	s.log.Info("deadline scanner started",
		zap.Int("window_days", s.window),
		zap.Duration("interval", s.interval),
	)
}

// Stop signals the scanner to exit and waits for it to finish.
func (s *DeadlineScanner) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}

func (s *DeadlineScanner) loop(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *DeadlineScanner) sweep(ctx context.Context) {
	now := time.Now().UTC()
	rows, err := s.reports.DeadlineAlerts(ctx, now, s.window)
	if err != nil {
		s.log.Error("deadline sweep failed", zap.Error(err))
		return
	}
	if len(rows) == 0 {
		return
	}

	var expired, warning int
	for _, r := range rows {
		if r.State == types.DeadlineExpired {
			expired++
		} else {
			warning++
		}
	}
	s.log.Warn("deadlines require attention",
		zap.Int("expired", expired),
		zap.Int("expiring", warning),
		zap.Int("window_days", s.window),
	)
}
