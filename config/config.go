// Package config reads the YAML configuration of the sk6812 daemon.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lautenbacher.net/sk6812/gradient"
	"lautenbacher.net/sk6812/hardware"
	"lautenbacher.net/sk6812/led"
)

const CONFILE = "config.yml"

// Patterns understood by the animation runner.
const (
	PatternSolid    = "solid"
	PatternGradient = "gradient"
	PatternRainbow  = "rainbow"
)

type Config struct {
	Hardware  HardwareConfig  `yaml:"Hardware"`
	Animation AnimationConfig `yaml:"Animation"`
	Night     NightConfig     `yaml:"Night"`
	Logging   LoggingConfig   `yaml:"Logging"`
	Web       WebConfig       `yaml:"Web"`
}

type HardwareConfig struct {
	Backend    string `yaml:"Backend"`
	Bus        int    `yaml:"Bus"`
	ChipSelect int    `yaml:"ChipSelect"`
	LedsTotal  int    `yaml:"LedsTotal"`
	Chip       string `yaml:"Chip"`
	// Order and the markers override the values of Chip when set. A marker
	// of 0 keeps the chip's marker; an all-low byte is no valid pulse.
	Order        string        `yaml:"Order"`
	MarkerOne    int           `yaml:"MarkerOne"`
	MarkerZero   int           `yaml:"MarkerZero"`
	SPIFrequency int           `yaml:"SPIFrequency"`
	Latch        time.Duration `yaml:"Latch"`
	SimMaxTxSize int           `yaml:"SimMaxTxSize"`
}

type GradientStop struct {
	Pos   float64   `yaml:"Pos" json:"Pos"`
	Color []float64 `yaml:"Color,flow" json:"Color"`
}

type AnimationConfig struct {
	Pattern      string         `yaml:"Pattern" json:"Pattern"`
	Color        []float64      `yaml:"Color,flow" json:"Color"`
	Gradient     []GradientStop `yaml:"Gradient" json:"Gradient"`
	Blend        string         `yaml:"Blend" json:"Blend"`
	RainbowStops int            `yaml:"RainbowStops" json:"RainbowStops"`
	Step         int            `yaml:"Step" json:"Step"`
	Delay        time.Duration  `yaml:"Delay" json:"Delay"`
	StatsEvery   time.Duration  `yaml:"StatsEvery" json:"StatsEvery"`
}

type NightConfig struct {
	Enabled    bool    `yaml:"Enabled" json:"Enabled"`
	Latitude   float64 `yaml:"Latitude" json:"Latitude"`
	Longitude  float64 `yaml:"Longitude" json:"Longitude"`
	Brightness float64 `yaml:"Brightness" json:"Brightness"`
}

type LoggingConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

type WebConfig struct {
	Addr string `yaml:"Addr"`
}

// Default returns the configuration used for every key missing in the file.
func Default() Config {
	return Config{
		Hardware: HardwareConfig{
			Backend:      string(hardware.Periph),
			LedsTotal:    60,
			Chip:         "sk6812rgbw",
			SPIFrequency: 6_400_000,
			Latch:        80 * time.Microsecond,
			SimMaxTxSize: 4096,
		},
		Animation: AnimationConfig{
			Pattern:      PatternRainbow,
			Color:        []float64{0, 0, 0, 255},
			RainbowStops: 6,
			Step:         1,
			Delay:        50 * time.Millisecond,
			StatsEvery:   time.Minute,
		},
		Night: NightConfig{
			Brightness: 0.2,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// ReadConfig reads and validates the file at cfile. Keys missing in the
// file keep the values of Default.
func ReadConfig(cfile string) (Config, error) {
	conf := Default()
	data, err := os.ReadFile(cfile)
	if err != nil {
		return conf, fmt.Errorf("can't read config file %s: %w", cfile, err)
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}
	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}
	return conf, nil
}

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.Hardware.validate()...)
	errs = append(errs, c.Animation.validate()...)
	errs = append(errs, c.Night.validate()...)
	errs = append(errs, c.Logging.validate()...)
	return errors.Join(errs...)
}

func (h HardwareConfig) validate() []error {
	var errs []error
	if _, err := hardware.ParseBackend(h.Backend); err != nil {
		errs = append(errs, fmt.Errorf("Hardware.Backend: %w", err))
	}
	if !hardware.Bus(h.Bus).Valid() {
		errs = append(errs, fmt.Errorf("Hardware.Bus (%d) must be between 0 and 6", h.Bus))
	}
	if !hardware.ChipSelect(h.ChipSelect).Valid() {
		errs = append(errs, fmt.Errorf("Hardware.ChipSelect (%d) must be between 0 and 2", h.ChipSelect))
	}
	if h.LedsTotal <= 0 {
		errs = append(errs, fmt.Errorf("Hardware.LedsTotal (%d) must be positive", h.LedsTotal))
	}
	if h.MarkerOne < 0 || h.MarkerOne > 255 {
		errs = append(errs, fmt.Errorf("Hardware.MarkerOne (%d) must be between 0 and 255", h.MarkerOne))
	}
	if h.MarkerZero < 0 || h.MarkerZero > 255 {
		errs = append(errs, fmt.Errorf("Hardware.MarkerZero (%d) must be between 0 and 255", h.MarkerZero))
	}
	if _, err := h.Encoding(); err != nil {
		errs = append(errs, fmt.Errorf("Hardware: %w", err))
	}
	if h.SPIFrequency <= 0 {
		errs = append(errs, fmt.Errorf("Hardware.SPIFrequency (%d) must be positive", h.SPIFrequency))
	}
	if h.Latch < 0 {
		errs = append(errs, fmt.Errorf("Hardware.Latch (%v) must be non-negative", h.Latch))
	}
	if h.SimMaxTxSize < 0 {
		errs = append(errs, fmt.Errorf("Hardware.SimMaxTxSize (%d) must be non-negative", h.SimMaxTxSize))
	}
	return errs
}

// Encoding returns the LED encoding for Chip with Order and the markers
// applied on top.
func (h HardwareConfig) Encoding() (led.Encoding, error) {
	enc, err := led.Lookup(h.Chip)
	if err != nil {
		return led.Encoding{}, err
	}
	order := enc.Order
	if h.Order != "" {
		if order, err = led.ParseOrder(h.Order); err != nil {
			return led.Encoding{}, err
		}
	}
	one, zero := enc.One, enc.Zero
	if h.MarkerOne != 0 {
		one = byte(h.MarkerOne)
	}
	if h.MarkerZero != 0 {
		zero = byte(h.MarkerZero)
	}
	return led.NewEncoding(order, one, zero)
}

func (a AnimationConfig) validate() []error {
	var errs []error
	switch a.Pattern {
	case PatternSolid:
		if err := validateColor("Animation.Color", a.Color); err != nil {
			errs = append(errs, err)
		}
	case PatternGradient:
		if len(a.Gradient) == 0 {
			errs = append(errs, errors.New("Animation.Gradient needs at least one stop for pattern gradient"))
		}
		for i, s := range a.Gradient {
			if s.Pos < 0 || s.Pos > 1 {
				errs = append(errs, fmt.Errorf("Animation.Gradient[%d].Pos (%v) must be between 0 and 1", i, s.Pos))
			}
			if err := validateColor(fmt.Sprintf("Animation.Gradient[%d].Color", i), s.Color); err != nil {
				errs = append(errs, err)
			}
		}
	case PatternRainbow:
		if a.RainbowStops < 0 {
			errs = append(errs, fmt.Errorf("Animation.RainbowStops (%d) must be non-negative", a.RainbowStops))
		}
	default:
		errs = append(errs, fmt.Errorf("Animation.Pattern %q must be one of %s, %s, %s", a.Pattern, PatternSolid, PatternGradient, PatternRainbow))
	}
	if _, err := gradient.ParseBlend(a.Blend); err != nil {
		errs = append(errs, fmt.Errorf("Animation.Blend: %w", err))
	}
	if a.Delay <= 0 {
		errs = append(errs, fmt.Errorf("Animation.Delay (%v) must be positive", a.Delay))
	}
	if a.StatsEvery < 0 {
		errs = append(errs, fmt.Errorf("Animation.StatsEvery (%v) must be non-negative", a.StatsEvery))
	}
	return errs
}

// BuildGradient builds the ramp for the gradient and rainbow patterns.
func (a AnimationConfig) BuildGradient() (gradient.Gradient, error) {
	blend, err := gradient.ParseBlend(a.Blend)
	if err != nil {
		return nil, err
	}
	if a.Pattern == PatternRainbow {
		return gradient.Rainbow(a.RainbowStops), nil
	}
	stops := make([]gradient.Stop, len(a.Gradient))
	for i, s := range a.Gradient {
		stops[i] = gradient.Stop{Pos: s.Pos, Color: ToLed(s.Color).ToColorful()}
	}
	table, err := gradient.NewTable(stops...)
	if err != nil {
		return nil, err
	}
	return table.WithBlend(blend), nil
}

func (n NightConfig) validate() []error {
	var errs []error
	if n.Latitude < -90 || n.Latitude > 90 {
		errs = append(errs, fmt.Errorf("Night.Latitude (%v) must be between -90 and 90", n.Latitude))
	}
	if n.Longitude < -180 || n.Longitude > 180 {
		errs = append(errs, fmt.Errorf("Night.Longitude (%v) must be between -180 and 180", n.Longitude))
	}
	if n.Brightness < 0 || n.Brightness > 1 {
		errs = append(errs, fmt.Errorf("Night.Brightness (%v) must be between 0 and 1", n.Brightness))
	}
	return errs
}

var (
	logLevels  = []string{"", "DEBUG", "INFO", "WARN", "ERROR"}
	logFormats = []string{"", "text", "json"}
)

func (l LoggingConfig) validate() []error {
	var errs []error
	if !slices.Contains(logLevels, strings.ToUpper(l.Level)) {
		errs = append(errs, fmt.Errorf("Logging.Level %q must be one of DEBUG, INFO, WARN, ERROR", l.Level))
	}
	if !slices.Contains(logFormats, strings.ToLower(l.Format)) {
		errs = append(errs, fmt.Errorf("Logging.Format %q must be text or json", l.Format))
	}
	return errs
}

func validateColor(name string, c []float64) error {
	if len(c) != 3 && len(c) != 4 {
		return fmt.Errorf("%s must have 3 (RGB) or 4 (RGBW) values, got %d", name, len(c))
	}
	for i, v := range c {
		if v < 0 || v > 255 {
			return fmt.Errorf("%s[%d] (%v) must be between 0 and 255", name, i, v)
		}
	}
	return nil
}

// ToLed converts a validated RGB or RGBW value list.
func ToLed(c []float64) led.Led {
	var v [4]float64
	copy(v[:], c)
	return led.FromFloats(v[0]/255, v[1]/255, v[2]/255, v[3]/255)
}
