// Package animation runs the frame loop of the daemon: it loads a pattern
// into the strip, rotates it every tick and dims it during the night.
package animation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gammazero/deque"

	"lautenbacher.net/sk6812/config"
	"lautenbacher.net/sk6812/strip"
	"lautenbacher.net/sk6812/util"
)

// statsWindow is the number of update durations Stats looks at.
const statsWindow = 500

// Stats summarizes the duration of the last Updates.
type Stats struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
}

// Runner owns its strip while Run is active. Reload may be called from any
// goroutine.
type Runner struct {
	strip  *strip.Strip
	anim   config.AnimationConfig
	night  config.NightConfig
	reload *util.AtomicEvent[config.RuntimeConfig]
	now    func() time.Time

	statsMu   sync.Mutex
	durations *deque.Deque[time.Duration]
}

// New loads the pattern of rc into s.
func New(s *strip.Strip, rc config.RuntimeConfig) (*Runner, error) {
	r := &Runner{
		strip:     s,
		reload:    util.NewAtomicEvent[config.RuntimeConfig](),
		now:       time.Now,
		durations: new(deque.Deque[time.Duration]),
	}
	r.durations.Grow(statsWindow)
	if err := r.apply(rc); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload hands new settings to the running loop. Only the latest settings
// are applied if several arrive within one tick.
func (r *Runner) Reload(rc config.RuntimeConfig) {
	r.reload.Send(rc)
}

func (r *Runner) apply(rc config.RuntimeConfig) error {
	switch rc.Animation.Pattern {
	case config.PatternSolid:
		r.strip.Fill(config.ToLed(rc.Animation.Color))
	case config.PatternGradient, config.PatternRainbow:
		g, err := rc.Animation.BuildGradient()
		if err != nil {
			return fmt.Errorf("failed to build gradient: %w", err)
		}
		r.strip.SetGradient(g)
	default:
		return fmt.Errorf("unknown pattern %q", rc.Animation.Pattern)
	}
	r.anim = rc.Animation
	r.night = rc.Night
	return nil
}

// Tick advances the animation by one step and sends the frame.
func (r *Runner) Tick() error {
	if r.anim.Pattern != config.PatternSolid {
		r.strip.RotateLeft(r.anim.Step)
	}
	start := time.Now()
	err := r.show()
	r.record(time.Since(start))
	return err
}

// show sends the strip, scaled down by the night brightness if it is night.
// The colors held by the strip stay unscaled.
func (r *Runner) show() error {
	if !r.night.Enabled || r.night.Brightness >= 1 || !IsNight(r.night.Latitude, r.night.Longitude, r.now()) {
		return r.strip.Update()
	}
	saved := r.strip.Leds()
	for i, l := range saved {
		r.strip.Set(i, l.MulScalar(r.night.Brightness))
	}
	err := r.strip.Update()
	r.strip.SetLeds(saved)
	return err
}

func (r *Runner) record(d time.Duration) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	if r.durations.Len() == statsWindow {
		r.durations.PopFront()
	}
	r.durations.PushBack(d)
}

func (r *Runner) Stats() Stats {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	var s Stats
	s.Count = r.durations.Len()
	if s.Count == 0 {
		return s
	}
	var sum time.Duration
	s.Min = r.durations.At(0)
	for i := 0; i < s.Count; i++ {
		d := r.durations.At(i)
		sum += d
		s.Min = min(s.Min, d)
		s.Max = max(s.Max, d)
	}
	s.Mean = sum / time.Duration(s.Count)
	return s
}

// Run ticks every Animation.Delay until ctx is done and turns the strip off
// before returning. Failed updates are logged; the loop carries on with the
// next tick.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.anim.Delay)
	defer ticker.Stop()

	var statsTick <-chan time.Time
	if r.anim.StatsEvery > 0 {
		t := time.NewTicker(r.anim.StatsEvery)
		defer t.Stop()
		statsTick = t.C
	}

	defer func() {
		r.strip.Clear()
		if err := r.strip.Update(); err != nil {
			slog.Error("Failed to turn strip off", "error", err)
		}
	}()

	slog.Info("Animation started", "pattern", r.anim.Pattern, "leds", r.strip.Len(), "delay", r.anim.Delay)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Ending animation loop")
			return nil
		case <-r.reload.Channel():
			rc := r.reload.Value()
			if err := r.apply(rc); err != nil {
				slog.Error("Failed to apply new animation settings", "error", err)
				continue
			}
			ticker.Reset(r.anim.Delay)
			slog.Info("Animation reloaded", "pattern", r.anim.Pattern, "step", r.anim.Step)
		case <-ticker.C:
			if err := r.Tick(); err != nil {
				slog.Error("Strip update failed", "error", err)
			}
		case <-statsTick:
			s := r.Stats()
			slog.Info("Frame timing", "frames", s.Count, "min", s.Min, "max", s.Max, "mean", s.Mean)
		}
	}
}
