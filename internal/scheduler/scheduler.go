package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"StockScreener/internal/notifier"
	"StockScreener/internal/screener"
)

// Scanner runs one screening pass.
type Scanner interface {
	Run(ctx context.Context) (*screener.Outcome, error)
}

// Scheduler manages the cron-triggered scans.
type Scheduler struct {
	Cron    *cron.Cron
	Scanner Scanner
	Ctx     context.Context

	// OnOutcome, when set, is called after every successful scan.
	OnOutcome func(*screener.Outcome)
	// OnError, when set, is called after every failed scan.
	OnError func(error)

	busy sync.Mutex
	mu   sync.Mutex
	last *screener.Outcome
}

// ErrBusy is returned when a scan is requested while another is running.
var ErrBusy = errors.New("a scan is already running")

// NewScheduler creates a new Scheduler. Overlapping triggers are skipped.
func NewScheduler(ctx context.Context, scanner Scanner) *Scheduler {
	logger := cron.VerbosePrintfLogger(log.WithField("component", "cron"))
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(logger)),
		),
		Scanner: scanner,
		Ctx:     ctx,
	}
}

// Register schedules the scan on spec, a six-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	log.Infof("scan scheduled: %s", spec)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunNow executes a scan immediately.
func (s *Scheduler) RunNow() (*screener.Outcome, error) {
	return s.run()
}

// Last returns the outcome of the most recent successful scan.
func (s *Scheduler) Last() *screener.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) scanTask() {
	if _, err := s.run(); err != nil {
		log.WithError(err).Error("scheduled scan failed")
	}
}

func (s *Scheduler) run() (*screener.Outcome, error) {
	if !s.busy.TryLock() {
		return nil, ErrBusy
	}
	defer s.busy.Unlock()

	log.Info("running scan")
	out, err := s.Scanner.Run(s.Ctx)
	if err != nil {
		if s.OnError != nil {
			s.OnError(err)
		}
		return out, err
	}

	s.mu.Lock()
	s.last = out
	s.mu.Unlock()

	if s.OnOutcome != nil {
		s.OnOutcome(out)
	}
	return out, nil
}

// HandleCommand processes a chat command and returns a reply. A /scan
// reports through the OnOutcome and OnError hooks.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/scan":
		if _, err := s.run(); err != nil {
			if errors.Is(err, ErrBusy) {
				return "A scan is already running."
			}
			log.WithError(err).Error("manual scan failed")
		}
		return ""
	case "/last":
		last := s.Last()
		if last == nil {
			return "No scan has completed yet."
		}
		return notifier.FormatScanReport(last)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /scan: run a scan now\n• /last: show the last scan"
