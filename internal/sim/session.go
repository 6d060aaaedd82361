// Package sim runs one game session: the spawner, one motion task per
// hostile and projectile, the battery refill worker, the command intake and
// the control loop that decides the outcome.
package sim

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/flak/internal/battery"
	"github.com/tomz197/flak/internal/clock"
	"github.com/tomz197/flak/internal/config"
	"github.com/tomz197/flak/internal/world"
)

// Options configures a session. Zero values fall back to the defaults in
// the config package.
type Options struct {
	Profile            config.Profile
	Field              config.Field
	Clock              clock.Clock
	Logger             *log.Logger
	Seed               int64 // 0 seeds from the clock
	ProjectileInterval time.Duration
	EvalInterval       time.Duration
	ID                 uuid.UUID
}

// Result is what Run returns once the session has fully shut down.
type Result struct {
	ID       uuid.UUID
	Profile  config.Profile
	Outcome  Outcome
	Counts   world.Counts
	Duration time.Duration
}

// Session owns all shared state of one game.
type Session struct {
	id                 uuid.UUID
	profile            config.Profile
	field              config.Field
	clock              clock.Clock
	log                *log.Logger
	rng                *rand.Rand // Used only by the spawner task
	projectileInterval time.Duration
	evalInterval       time.Duration

	battery *battery.Battery
	world   *world.Registry
	heading atomic.Int32

	// lifecycle serialises task creation against RequestStop: tasks start
	// under the read lock, stop takes the write lock. Once stopped is set no
	// new task can be added to the wait group.
	lifecycle     sync.RWMutex
	stopped       atomic.Bool
	done          chan struct{}
	tasks         sync.WaitGroup
	live          atomic.Int64
	spawnComplete atomic.Bool
	outcome       atomic.Int32
	ran           atomic.Bool

	commands chan Command
	events   chan Event
}

// New creates a session. Nothing runs until Run is called.
func New(opts Options) *Session {
	if opts.Field.Width == 0 || opts.Field.Height == 0 {
		opts.Field = config.DefaultField()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Seed == 0 {
		opts.Seed = opts.Clock.Now().UnixNano()
	}
	if opts.ProjectileInterval <= 0 {
		opts.ProjectileInterval = config.ProjectileInterval
	}
	if opts.EvalInterval <= 0 {
		opts.EvalInterval = config.EvalInterval
	}
	if opts.ID == uuid.Nil {
		opts.ID = uuid.New()
	}

	s := &Session{
		id:                 opts.ID,
		profile:            opts.Profile,
		field:              opts.Field,
		clock:              opts.Clock,
		log:                opts.Logger.With("session", opts.ID.String()[:8]),
		rng:                rand.New(rand.NewSource(opts.Seed)),
		projectileInterval: opts.ProjectileInterval,
		evalInterval:       opts.EvalInterval,
		battery:            battery.New(opts.Profile.Launchers, opts.Profile.RefillDelay, opts.Clock),
		world:              world.NewRegistry(),
		done:               make(chan struct{}),
		commands:           make(chan Command, config.CommandBuffer),
		events:             make(chan Event, config.EventBuffer),
	}
	s.battery.OnLoad = func(slot int) {
		s.log.Debug("launcher reloaded", "slot", slot)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Profile returns the difficulty profile in use.
func (s *Session) Profile() config.Profile {
	return s.profile
}

// Field returns the playfield geometry.
func (s *Session) Field() config.Field {
	return s.field
}

// Run starts the service tasks and evaluates the outcome every cadence until
// it is decided, the context is cancelled or RequestStop is called. It then
// stops every task, waits for all of them and returns the result. Run must
// be called at most once.
func (s *Session) Run(ctx context.Context) Result {
	if s.ran.Swap(true) {
		panic("sim: Session.Run called twice")
	}

	start := s.clock.Now()
	s.log.Info("session started",
		"difficulty", s.profile.Name,
		"launchers", s.profile.Launchers,
		"quota", s.profile.Quota,
		"width", s.field.Width,
		"height", s.field.Height)

	stopOnCancel := context.AfterFunc(ctx, s.RequestStop)
	defer stopOnCancel()

	s.start(s.battery.RunRefill)
	s.start(s.runSpawner)
	s.start(s.runCommands)

	outcome := s.control()
	s.outcome.Store(int32(outcome))
	s.emit(Event{Type: EventOutcome, Outcome: outcome})

	s.shutdown()

	result := Result{
		ID:       s.id,
		Profile:  s.profile,
		Outcome:  outcome,
		Counts:   s.world.Counters().Load(),
		Duration: s.clock.Now().Sub(start),
	}
	s.log.Info("session finished",
		"outcome", outcome,
		"destroyed", result.Counts.Destroyed,
		"grounded", result.Counts.Grounded,
		"spawned", result.Counts.Spawned,
		"fired", result.Counts.Fired)
	return result
}

// control is the orchestrating loop: sweep, evaluate, sleep.
func (s *Session) control() Outcome {
	for {
		s.world.Sweep()
		if outcome := s.evaluate(); outcome.Decided() {
			return outcome
		}
		if s.stopped.Load() || !s.clock.Sleep(s.evalInterval, s.done) {
			return OutcomeAborted
		}
	}
}

func (s *Session) evaluate() Outcome {
	counts := s.world.Counters().Load()
	complete := s.spawnComplete.Load()
	return Evaluate(Inputs{
		Destroyed:     counts.Destroyed,
		Grounded:      counts.Grounded,
		Quota:         s.profile.Quota,
		SpawnComplete: complete,
		AnyAlive:      complete && s.world.AnyHostileAlive(),
	})
}

// RequestStop sets the stop flag, wakes every sleeping task and the blocked
// refill worker. It does not wait; Run performs the wait. Safe to call any
// number of times from any goroutine.
func (s *Session) RequestStop() {
	s.lifecycle.Lock()
	first := !s.stopped.Swap(true)
	if first {
		close(s.done)
	}
	s.lifecycle.Unlock()

	if first {
		s.battery.Stop()
		s.log.Debug("stop requested")
	}
}

func (s *Session) shutdown() {
	s.RequestStop()
	s.tasks.Wait()
	s.world.Sweep()
	close(s.events)
	s.log.Debug("all tasks exited")
}

// Stopped reports whether a stop has been requested.
func (s *Session) Stopped() bool {
	return s.stopped.Load()
}

// Done is closed when a stop has been requested.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Tasks returns the number of running tasks, service and entity alike.
func (s *Session) Tasks() int {
	return int(s.live.Load())
}

// SpawnComplete reports whether the spawner has created the whole quota.
func (s *Session) SpawnComplete() bool {
	return s.spawnComplete.Load()
}

// Outcome returns the decided outcome, or OutcomeOngoing while running.
func (s *Session) Outcome() Outcome {
	return Outcome(s.outcome.Load())
}

// Counts returns the current aggregate counters.
func (s *Session) Counts() world.Counts {
	return s.world.Counters().Load()
}

// start launches fn as a tracked task. It returns false once stopped.
func (s *Session) start(fn func()) bool {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	return s.startLocked(fn)
}

// startLocked is start for callers already holding the lifecycle read lock.
func (s *Session) startLocked(fn func()) bool {
	if s.stopped.Load() {
		return false
	}
	s.tasks.Add(1)
	s.live.Add(1)
	go func() {
		defer func() {
			s.live.Add(-1)
			s.tasks.Done()
		}()
		fn()
	}()
	return true
}

// emit delivers an event without blocking; events are dropped when the
// consumer falls behind.
func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	default:
	}
}
