package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultUpcomingDays = 7
	fetchTimeout        = 10 * time.Second
	maxBackoff          = 30 * time.Second
)

var errNoToken = errors.New("no session token")

// PollerOptions configure a Poller.
type PollerOptions struct {
	Interval     time.Duration
	UpcomingDays int
	Logger       *slog.Logger
}

// Poller refreshes the garage snapshot while a user is signed in.
type Poller struct {
	backend      api.Backend
	token        func() string
	store        *state.Store
	interval     time.Duration
	upcomingDays int
	logger       *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	gen    uint64
}

// NewPoller returns a stopped poller. token is read before every fetch.
func NewPoller(backend api.Backend, token func() string, store *state.Store, opts PollerOptions) *Poller {
	if backend == nil {
		panic("app: poller needs a backend")
	}
	if token == nil {
		panic("app: poller needs a token source")
	}
	if store == nil {
		panic("app: poller needs a data store")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	days := opts.UpcomingDays
	if days <= 0 {
		days = defaultUpcomingDays
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Poller{
		backend:      backend,
		token:        token,
		store:        store,
		interval:     interval,
		upcomingDays: days,
		logger:       logger,
	}
}

// Start launches the polling goroutine. Calling Start on a running poller
// does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	gen := p.gen
	go p.loop(ctx, gen, done)
	p.logger.Debug("poller started", "interval", p.interval)
}

// Stop halts polling, waits for the goroutine and clears the snapshot so the
// next user never sees the previous one's garage.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.gen++
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		p.logger.Debug("poller stopped")
	}
	p.store.Clear()
}

// Running reports whether the polling goroutine is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Refresh fetches everything once and records the result.
func (p *Poller) Refresh(ctx context.Context) error {
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()
	return p.refresh(ctx, gen)
}

func (p *Poller) loop(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)
	for {
		_ = p.refresh(ctx, gen)

		wait := calculateBackoff(p.store.Snapshot().ConsecutiveFailures, p.interval)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *Poller) refresh(ctx context.Context, gen uint64) error {
	garage, err := p.fetch(ctx)
	if err != nil && ctx.Err() != nil {
		// Cancelled by Stop; nothing to record.
		return err
	}
	p.commit(gen, garage, err)
	if err != nil {
		p.logger.Warn("garage poll failed", "error", err)
		return err
	}
	p.logger.Debug("garage refreshed",
		"vehicles", len(garage.Vehicles),
		"reminders", len(garage.Reminders),
		"overdue", len(garage.Overdue),
	)
	return nil
}

func (p *Poller) fetch(ctx context.Context) (*state.Garage, error) {
	token := p.token()
	if token == "" {
		return nil, errNoToken
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	vehicles, err := p.backend.Vehicles(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch vehicles: %w", err)
	}
	reminders, err := p.backend.Reminders(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch reminders: %w", err)
	}
	upcoming, err := p.backend.UpcomingReminders(ctx, token, p.upcomingDays)
	if err != nil {
		return nil, fmt.Errorf("fetch upcoming reminders: %w", err)
	}
	overdue, err := p.backend.OverdueReminders(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch overdue reminders: %w", err)
	}
	return &state.Garage{
		Vehicles:  vehicles,
		Reminders: reminders,
		Upcoming:  upcoming,
		Overdue:   overdue,
	}, nil
}

// History fetches the service and fuel record of one vehicle. It is read on
// demand and not kept in the snapshot.
func (p *Poller) History(ctx context.Context, vehicleID int64) (state.History, error) {
	token := p.token()
	if token == "" {
		return state.History{}, errNoToken
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	maintenance, err := p.backend.MaintenanceLogs(ctx, token, vehicleID)
	if err != nil {
		return state.History{}, fmt.Errorf("fetch maintenance logs: %w", err)
	}
	fuel, err := p.backend.FuelLogs(ctx, token, vehicleID)
	if err != nil {
		return state.History{}, fmt.Errorf("fetch fuel logs: %w", err)
	}
	p.logger.Debug("vehicle history fetched",
		"vehicle_id", vehicleID,
		"maintenance", len(maintenance),
		"fuel", len(fuel),
	)
	return state.History{
		VehicleID:   vehicleID,
		Maintenance: maintenance,
		Fuel:        fuel,
		FetchedAt:   time.Now(),
	}, nil
}

// commit drops results from before the last Stop.
func (p *Poller) commit(gen uint64, garage *state.Garage, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return
	}
	p.store.Update(garage, err)
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff. Intervals already above the cap are left unchanged.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
