package animation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lautenbacher.net/sk6812/config"
	"lautenbacher.net/sk6812/led"
	"lautenbacher.net/sk6812/sim"
	"lautenbacher.net/sk6812/strip"
)

func runtimeConfig(pattern string) config.RuntimeConfig {
	conf := config.Default()
	conf.Animation.Pattern = pattern
	conf.Animation.Color = []float64{200, 100, 50, 20}
	conf.Animation.Gradient = []config.GradientStop{
		{Pos: 0, Color: []float64{255, 0, 0}},
		{Pos: 1, Color: []float64{0, 0, 255}},
	}
	conf.Animation.Delay = 5 * time.Millisecond
	conf.Animation.StatsEvery = 0
	return conf.Runtime()
}

func newRunner(t *testing.T, count int, rc config.RuntimeConfig) (*Runner, *strip.Strip, *sim.Port) {
	t.Helper()
	port := sim.NewPort("sim", led.SK6812RGBW)
	s, err := strip.New(port, count, strip.WithLatch(0))
	require.NoError(t, err)
	r, err := New(s, rc)
	require.NoError(t, err)
	return r, s, port
}

func TestNew_Solid(t *testing.T) {
	r, s, port := newRunner(t, 4, runtimeConfig(config.PatternSolid))

	want := led.FromRGBW(200, 100, 50, 20)
	for i := 0; i < s.Len(); i++ {
		assert.Equal(t, want, s.Get(i))
	}

	require.NoError(t, r.Tick())
	assert.Equal(t, []led.Led{want, want, want, want}, port.Frames().Value())
}

func TestNew_UnknownPattern(t *testing.T) {
	port := sim.NewPort("sim", led.SK6812RGBW)
	s, err := strip.New(port, 3)
	require.NoError(t, err)

	_, err = New(s, runtimeConfig("plasma"))
	assert.ErrorContains(t, err, "unknown pattern")
}

func TestTick_Rotates(t *testing.T) {
	tests := []struct {
		name  string
		step  int
		index func(i, n int) int
	}{
		{"Forward", 1, func(i, n int) int { return (i + 1) % n }},
		{"Backward", -1, func(i, n int) int { return (i - 1 + n) % n }},
		{"Two", 2, func(i, n int) int { return (i + 2) % n }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := runtimeConfig(config.PatternGradient)
			rc.Animation.Step = tt.step
			r, s, port := newRunner(t, 5, rc)
			before := s.Leds()

			require.NoError(t, r.Tick())

			after := s.Leds()
			for i := range after {
				assert.Equal(t, before[tt.index(i, len(before))], after[i], "led %d", i)
			}
			assert.Equal(t, after, port.Frames().Value())
		})
	}
}

func TestTick_NightDimming(t *testing.T) {
	rc := runtimeConfig(config.PatternSolid)
	rc.Night = config.NightConfig{Enabled: true, Latitude: 48.14, Longitude: 11.58, Brightness: 0.5}
	r, s, port := newRunner(t, 2, rc)

	r.now = func() time.Time { return time.Date(2024, 12, 21, 1, 0, 0, 0, time.UTC) }
	require.NoError(t, r.Tick())
	dimmed := led.FromRGBW(100, 50, 25, 10)
	assert.Equal(t, []led.Led{dimmed, dimmed}, port.Frames().Value())
	assert.Equal(t, led.FromRGBW(200, 100, 50, 20), s.Get(0), "strip keeps the undimmed colors")

	r.now = func() time.Time { return time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, r.Tick())
	full := led.FromRGBW(200, 100, 50, 20)
	assert.Equal(t, []led.Led{full, full}, port.Frames().Value())
}

func TestTick_ReportsUpdateErrors(t *testing.T) {
	r, _, port := newRunner(t, 2, runtimeConfig(config.PatternSolid))
	port.Fail(assert.AnError)

	assert.ErrorIs(t, r.Tick(), assert.AnError)
	assert.Equal(t, 1, r.Stats().Count, "failed updates are timed as well")
}

func TestStats(t *testing.T) {
	r, _, _ := newRunner(t, 1, runtimeConfig(config.PatternSolid))
	assert.Equal(t, Stats{}, r.Stats())

	for i := 0; i < statsWindow+100; i++ {
		r.record(time.Duration(i) * time.Millisecond)
	}
	s := r.Stats()
	assert.Equal(t, statsWindow, s.Count)
	assert.Equal(t, 100*time.Millisecond, s.Min)
	assert.Equal(t, 599*time.Millisecond, s.Max)
	assert.Equal(t, 349500*time.Microsecond, s.Mean)
}

func TestRun_ReloadAndShutdown(t *testing.T) {
	r, _, port := newRunner(t, 3, runtimeConfig(config.PatternRainbow))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	assert.Eventually(t, func() bool { return port.Writes() >= 3 }, 2*time.Second, 5*time.Millisecond)

	rc := runtimeConfig(config.PatternSolid)
	rc.Animation.Color = []float64{1, 2, 3}
	r.Reload(rc)
	want := []led.Led{led.FromRGB(1, 2, 3), led.FromRGB(1, 2, 3), led.FromRGB(1, 2, 3)}
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, port.Frames().Value())
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, make([]led.Led, 3), port.Frames().Value(), "strip is turned off on exit")
}
