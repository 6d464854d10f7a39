package stop

import (
	"math"
	"strings"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestHardStop(t *testing.T) {
	e := NewLogicEngine(Ramp{Destination: 0.1, Velocity: 1, MaxTime: 10, MaxAcceleration: 1, MaxVelocity: 2})
	if e.Profile() != "hard stop" {
		t.Fatalf("profile = %q", e.Profile())
	}
	if !near(e.Duration(), 0.2, 1e-12) {
		t.Fatalf("duration = %v", e.Duration())
	}
	if got := e.Velocity(0.1); !near(got, 0.5, 1e-9) {
		t.Fatalf("velocity halfway = %v", got)
	}
	if got := e.Interpolation(0.2); !near(got, 0.1, 1e-9) {
		t.Fatalf("end position = %v", got)
	}
	if got := e.Interpolation(1); got != 0.1 || !e.IsStopped() {
		t.Fatalf("after the end: %v stopped=%v", got, e.IsStopped())
	}
}

func TestCruiseDecelerate(t *testing.T) {
	e := NewLogicEngine(Ramp{Destination: 1, Velocity: 1, MaxTime: 10, MaxAcceleration: 2, MaxVelocity: 5})
	if e.Profile() != "cruise decelerate" {
		t.Fatalf("profile = %q", e.Profile())
	}
	if got := e.Interpolation(0.75); !near(got, 0.75, 1e-9) {
		t.Fatalf("cruise end = %v", got)
	}
	if e.IsStopped() {
		t.Fatalf("should still be moving")
	}
	if got := e.Velocity(1); !near(got, 0.5, 1e-9) {
		t.Fatalf("braking velocity = %v", got)
	}
	if got := e.Interpolation(1.25); !near(got, 1, 1e-9) {
		t.Fatalf("stop position = %v", got)
	}
	e.Interpolation(2)
	if !e.IsStopped() || e.LastVelocity() != 0 {
		t.Fatalf("should be stopped")
	}
}

func TestAccelerateCruiseDecelerate(t *testing.T) {
	e := NewLogicEngine(Ramp{Destination: 10, MaxTime: 1, MaxAcceleration: 1, MaxVelocity: 2})
	if e.Profile() != "accelerate cruise decelerate" {
		t.Fatalf("profile = %q", e.Profile())
	}
	if !near(e.Duration(), 7, 1e-3) {
		t.Fatalf("duration = %v", e.Duration())
	}
	for _, tc := range []struct{ t, pos, vel float64 }{
		{2, 2, 2},
		{5, 8, 2},
		{6, 9.5, 1},
		{8, 10, 0},
	} {
		if got := e.Interpolation(tc.t); !near(got, tc.pos, 1e-3) {
			t.Fatalf("pos(%v) = %v, want %v", tc.t, got, tc.pos)
		}
		if got := e.Velocity(tc.t); !near(got, tc.vel, 1e-3) {
			t.Fatalf("vel(%v) = %v, want %v", tc.t, got, tc.vel)
		}
	}
}

func TestVelocityIsContinuous(t *testing.T) {
	e := NewLogicEngine(Ramp{Destination: 1, MaxTime: 1, MaxAcceleration: 1, MaxVelocity: 10})
	if e.Profile() != "accelerate decelerate" {
		t.Fatalf("profile = %q", e.Profile())
	}
	const h = 1e-4
	prev := e.Velocity(0)
	for x := h; x < e.Duration(); x += h {
		v := e.Velocity(x)
		if math.Abs(v-prev) > 2*h {
			t.Fatalf("velocity jumps at %v: %v -> %v", x, prev, v)
		}
		prev = v
	}
	if got := e.Interpolation(e.Duration() + 1); !near(got, 1, 1e-9) {
		t.Fatalf("end = %v", got)
	}
}

func TestBackwards(t *testing.T) {
	e := NewLogicEngine(Ramp{Position: 1, Destination: 0.5, MaxTime: 1, MaxAcceleration: 1, MaxVelocity: 10})
	if v := e.Velocity(0.5); v >= 0 {
		t.Fatalf("moving towards a smaller destination should have negative velocity, got %v", v)
	}
	if got := e.Interpolation(5); !near(got, 0.5, 1e-9) {
		t.Fatalf("end = %v", got)
	}
	if !strings.Contains(e.Debug("x", 5), "backward") {
		t.Fatalf("debug should mention direction: %q", e.Debug("x", 5))
	}
}

func TestMovingAwayFirst(t *testing.T) {
	e := NewLogicEngine(Ramp{Destination: 1, Velocity: -1, MaxTime: 1, MaxAcceleration: 2, MaxVelocity: 10})
	if !strings.HasPrefix(e.Profile(), "backward") {
		t.Fatalf("profile = %q", e.Profile())
	}
	if got := e.Interpolation(0.1); got >= 0 {
		t.Fatalf("should keep moving away first, got %v", got)
	}
	if got := e.Interpolation(10); !near(got, 1, 1e-9) {
		t.Fatalf("end = %v", got)
	}
}

func TestSpringSettlesOnTarget(t *testing.T) {
	e := NewSpringEngine(Spring{Destination: 1, Mass: 1, Stiffness: 100, Damping: 20, StopThreshold: 1e-3})
	var pos float64
	for i := 1; i <= 180; i++ {
		pos = e.Interpolation(float64(i) / 60)
		if pos > 1+1e-6 {
			t.Fatalf("critically damped spring overshot: %v", pos)
		}
	}
	if pos != 1 || !e.IsStopped() {
		t.Fatalf("pos = %v stopped = %v", pos, e.IsStopped())
	}
}

func TestSpringBoundary(t *testing.T) {
	run := func(mode BoundaryMode) float64 {
		e := NewSpringEngine(Spring{Destination: 1, Mass: 1, Stiffness: 100, Damping: 2, StopThreshold: 1e-3, Boundary: mode})
		peak := 0.0
		for i := 1; i <= 60; i++ {
			peak = math.Max(peak, e.Interpolation(float64(i)/60))
		}
		return peak
	}
	if peak := run(Overshoot); peak < 1.5 {
		t.Fatalf("underdamped spring should overshoot, peak %v", peak)
	}
	if peak := run(BounceEnd); peak > 1 {
		t.Fatalf("bounce end must stay inside, peak %v", peak)
	}
}

func TestSpringIgnoresTimeGoingBack(t *testing.T) {
	e := NewSpringEngine(Spring{Destination: 1, Mass: 1, Stiffness: 50, Damping: 5, StopThreshold: 1e-4})
	p := e.Interpolation(0.1)
	if got := e.Interpolation(0.05); got != p {
		t.Fatalf("state changed going back: %v -> %v", p, got)
	}
	if e.Velocity(0) <= 0 || e.Acceleration() == 0 {
		t.Fatalf("spring should be moving towards the target")
	}
}

func TestLogicModes(t *testing.T) {
	var l Logic
	if l.Mode() != Unconfigured || l.Engine() != nil {
		t.Fatalf("zero Logic should be unconfigured")
	}
	if l.Interpolation(0.3) != 0.3 || !l.IsStopped() || l.Velocity(0.3) != 0 {
		t.Fatalf("unconfigured Logic should pass progress through")
	}

	l.Config(Ramp{Destination: 1, Velocity: 1, MaxTime: 10, MaxAcceleration: 2, MaxVelocity: 5})
	if l.Mode() != ModeRamp {
		t.Fatalf("mode = %s", l.Mode())
	}
	if _, ok := l.Engine().(*LogicEngine); !ok {
		t.Fatalf("engine = %T", l.Engine())
	}

	l.SpringConfig(Spring{Destination: 1, Mass: 1, Stiffness: 100, Damping: 20, StopThreshold: 1e-3})
	if l.Mode() != ModeSpring || !strings.Contains(l.Debug("d", 0), "spring") {
		t.Fatalf("mode = %s", l.Mode())
	}
	l.Interpolation(0.1)
	if l.LastVelocity() <= 0 {
		t.Fatalf("spring should be moving")
	}

	l.Config(Ramp{Destination: 0.1, Velocity: 1, MaxTime: 10, MaxAcceleration: 1, MaxVelocity: 2})
	if got := l.Interpolation(1); got != 0.1 || l.Mode() != ModeRamp {
		t.Fatalf("switch back to ramp: %v %s", got, l.Mode())
	}
}

func TestParseBoundaryMode(t *testing.T) {
	for _, m := range []BoundaryMode{Overshoot, BounceStart, BounceEnd, BounceBoth} {
		got, err := ParseBoundaryMode(m.String())
		if err != nil || got != m {
			t.Fatalf("round trip %s: %v %v", m, got, err)
		}
	}
	if !BounceBoth.bounceStart() || !BounceBoth.bounceEnd() || Overshoot.bounceEnd() {
		t.Fatalf("bounce flags wrong")
	}
	if _, err := ParseBoundaryMode("wobble"); err == nil {
		t.Fatalf("expected error")
	}
}
