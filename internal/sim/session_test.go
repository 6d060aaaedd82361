package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomz197/flak/internal/clock"
	"github.com/tomz197/flak/internal/config"
	"github.com/tomz197/flak/internal/world"
)

var testProfile = config.Profile{
	Name:          "test",
	Launchers:     2,
	Quota:         4,
	StepInterval:  time.Second,
	RefillDelay:   time.Second,
	SpawnInterval: time.Second,
}

func newManualSession(t *testing.T, p config.Profile) (*Session, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Unix(0, 0))
	s := New(Options{Profile: p, Clock: clk, Seed: 1})
	return s, clk
}

// stopAndWait shuts down tasks started without Run.
func stopAndWait(t *testing.T, s *Session) {
	t.Helper()
	s.RequestStop()
	waited := make(chan struct{})
	go func() {
		s.tasks.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatalf("tasks did not exit, %d still running", s.Tasks())
	}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestFireConsumesSlots(t *testing.T) {
	s, _ := newManualSession(t, testProfile)
	defer stopAndWait(t, s)

	if !s.Fire() || !s.Fire() {
		t.Fatal("expected both loaded slots to fire")
	}
	if s.Fire() {
		t.Fatal("fire succeeded with an empty battery")
	}

	snap := s.Snapshot()
	for i, loaded := range snap.Slots {
		if loaded {
			t.Errorf("slot %d still loaded", i)
		}
	}
	if snap.Counts.Fired != 2 {
		t.Errorf("expected 2 shots counted, got %d", snap.Counts.Fired)
	}
	if len(snap.Projectiles) != 2 {
		t.Errorf("expected 2 projectiles, got %d", len(snap.Projectiles))
	}

	want := []Event{
		{Type: EventFired, Slot: 0, ProjectileID: 1},
		{Type: EventFired, Slot: 1, ProjectileID: 2},
		{Type: EventNoAmmo},
	}
	for i, w := range want {
		select {
		case got := <-s.Events():
			if got != w {
				t.Errorf("event %d = %+v, want %+v", i, got, w)
			}
		default:
			t.Fatalf("missing event %d", i)
		}
	}
}

func TestFireAfterStopIsRejected(t *testing.T) {
	s, _ := newManualSession(t, testProfile)
	s.RequestStop()
	s.RequestStop()

	if s.Fire() {
		t.Error("fire accepted after stop")
	}
	if s.Submit(Command{Kind: CommandFire}) {
		t.Error("submit accepted after stop")
	}
	if got := s.Snapshot().Counts.Fired; got != 0 {
		t.Errorf("expected no shots, got %d", got)
	}
	if s.Tasks() != 0 {
		t.Errorf("expected no tasks, got %d", s.Tasks())
	}
}

func TestSetHeadingIgnoresInvalid(t *testing.T) {
	s, _ := newManualSession(t, testProfile)
	if s.Heading() != world.HeadingUp {
		t.Fatalf("expected initial heading up, got %s", s.Heading())
	}
	s.SetHeading(world.HeadingLeft)
	s.SetHeading(world.Heading(42))
	if s.Heading() != world.HeadingLeft {
		t.Errorf("expected left, got %s", s.Heading())
	}
}

func TestStraightUpRocketKeepsLaunchColumn(t *testing.T) {
	s, clk := newManualSession(t, testProfile)
	defer stopAndWait(t, s)

	x, y := s.Field().LaunchPoint()
	if !s.Fire() {
		t.Fatal("fire failed")
	}

	for step := 0; s.Tasks() > 0; step++ {
		if step > s.Field().Height {
			t.Fatal("projectile never left the field")
		}
		if !clk.WaitForWaiters(1, time.Second) {
			break
		}
		for _, p := range s.Snapshot().Projectiles {
			if p.X != x {
				t.Fatalf("column drifted from %d to %d", x, p.X)
			}
			if p.Y >= y {
				t.Fatalf("projectile did not move up, row %d", p.Y)
			}
		}
		clk.Advance(config.ProjectileInterval)
	}

	waitUntil(t, "projectile task exit", func() bool { return s.Tasks() == 0 })
	snap := s.Snapshot()
	if len(snap.ActiveProjectiles()) != 0 {
		t.Errorf("projectile still active after exit: %+v", snap.Projectiles)
	}
}

func TestSubmitAppliesCommands(t *testing.T) {
	s, _ := newManualSession(t, testProfile)
	s.start(s.runCommands)
	defer stopAndWait(t, s)

	if !s.Submit(Command{Kind: CommandSetHeading, Heading: world.HeadingUpRight}) {
		t.Fatal("set heading dropped")
	}
	if !s.Submit(Command{Kind: CommandFire}) {
		t.Fatal("fire dropped")
	}

	select {
	case e := <-s.Events():
		if e.Type != EventFired {
			t.Fatalf("expected fired event, got %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no fired event")
	}

	projectiles := s.Snapshot().Projectiles
	if len(projectiles) != 1 || projectiles[0].Heading != world.HeadingUpRight {
		t.Errorf("unexpected projectiles %+v", projectiles)
	}

	if !s.Submit(Command{Kind: CommandStop}) {
		t.Fatal("stop dropped")
	}
	waitUntil(t, "stop", s.Stopped)
}

func TestSubmitDropsWhenQueueFull(t *testing.T) {
	s, _ := newManualSession(t, testProfile)
	for i := 0; i < config.CommandBuffer; i++ {
		if !s.Submit(Command{Kind: CommandSetHeading, Heading: world.HeadingLeft}) {
			t.Fatalf("command %d dropped before the queue was full", i)
		}
	}
	if s.Submit(Command{Kind: CommandFire}) {
		t.Error("expected drop on full queue")
	}
}

func TestCancelStopsEveryTask(t *testing.T) {
	s, clk := newManualSession(t, testProfile)
	ctx, cancel := context.WithCancel(context.Background())

	results := make(chan Result, 1)
	go func() { results <- s.Run(ctx) }()

	// Control loop, spawner and the first hostile all sleep on the clock.
	if !clk.WaitForWaiters(3, 2*time.Second) {
		t.Fatalf("expected 3 sleepers, got %d", clk.Waiters())
	}
	if !s.Fire() {
		t.Fatal("fire failed")
	}

	cancel()

	var res Result
	select {
	case res = <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if res.Outcome != OutcomeAborted {
		t.Errorf("expected aborted, got %s", res.Outcome)
	}
	if s.Tasks() != 0 {
		t.Errorf("expected all tasks gone, %d left", s.Tasks())
	}
	if res.ID != s.ID() {
		t.Errorf("result id %s, session id %s", res.ID, s.ID())
	}

	var sawOutcome bool
	for e := range s.Events() {
		if e.Type == EventOutcome {
			sawOutcome = e.Outcome == OutcomeAborted
		}
	}
	if !sawOutcome {
		t.Error("missing aborted outcome event")
	}

	// Nothing may be created once stopped.
	before := s.Counts()
	clk.Advance(time.Hour)
	if s.Fire() {
		t.Error("fire accepted after Run returned")
	}
	if after := s.Counts(); after != before {
		t.Errorf("counts changed after stop: %+v -> %+v", before, after)
	}
	if s.SpawnComplete() {
		t.Error("spawn complete set although the quota was not reached")
	}
}

func fastProfile() config.Profile {
	return config.Profile{
		Name:          "fast",
		Launchers:     3,
		Quota:         6,
		StepInterval:  time.Millisecond,
		RefillDelay:   time.Millisecond,
		SpawnInterval: time.Millisecond,
	}
}

func fastOptions(p config.Profile) Options {
	return Options{
		Profile:            p,
		Seed:               7,
		ProjectileInterval: time.Millisecond,
		EvalInterval:       2 * time.Millisecond,
	}
}

func TestUndefendedSessionLoses(t *testing.T) {
	p := fastProfile()
	s := New(fastOptions(p))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res := s.Run(ctx)
	if res.Outcome != OutcomeLose {
		t.Fatalf("expected lose, got %s (%+v)", res.Outcome, res.Counts)
	}
	if res.Counts.Grounded <= LoseThreshold(p.Quota) {
		t.Errorf("lost with only %d grounded", res.Counts.Grounded)
	}
	if res.Counts.Destroyed != 0 || res.Counts.Fired != 0 {
		t.Errorf("unexpected counts %+v", res.Counts)
	}
	if s.Tasks() != 0 {
		t.Errorf("%d tasks still running", s.Tasks())
	}
}

func TestCountersStayConsistentUnderFire(t *testing.T) {
	p := fastProfile()
	p.Quota = 20
	s := New(fastOptions(p))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; !s.Stopped(); i++ {
			s.SetHeading(world.Headings[i%len(world.Headings)])
			s.Fire()
			time.Sleep(200 * time.Microsecond)
		}
	}()

	violations := make(chan string, 1)
	go func() {
		defer wg.Done()
		for !s.Stopped() {
			snap := s.Snapshot()
			c := snap.Counts
			loaded := 0
			for _, l := range snap.Slots {
				if l {
					loaded++
				}
			}
			switch {
			case c.Destroyed+c.Grounded > c.Spawned:
				violations <- "resolved exceeds spawned"
				return
			case c.Spawned > p.Quota:
				violations <- "spawned exceeds quota"
				return
			case loaded > p.Launchers:
				violations <- "loaded exceeds launchers"
				return
			}
		}
	}()

	res := s.Run(ctx)
	wg.Wait()

	select {
	case v := <-violations:
		t.Fatal(v)
	default:
	}

	if !res.Outcome.Decided() || res.Outcome == OutcomeAborted {
		t.Fatalf("expected win or lose, got %s", res.Outcome)
	}
	if (res.Outcome == OutcomeWin) != (res.Counts.Destroyed >= WinThreshold(p.Quota)) {
		t.Errorf("outcome %s disagrees with counts %+v", res.Outcome, res.Counts)
	}
	if _, pr := s.world.Len(); pr != 0 {
		t.Errorf("%d projectiles left after shutdown", pr)
	}
}
