package config

// RuntimeConfig is the part of the configuration that can be changed while
// the daemon runs, through the web API or by editing the file. Hardware
// settings need a restart and are not part of it.
type RuntimeConfig struct {
	LedsTotal int             `yaml:"LedsTotal" json:"LedsTotal"`
	Animation AnimationConfig `yaml:"Animation" json:"Animation"`
	Night     NightConfig     `yaml:"Night" json:"Night"`
}

// Runtime extracts the runtime part of c. LedsTotal is informational.
func (c *Config) Runtime() RuntimeConfig {
	return RuntimeConfig{
		LedsTotal: c.Hardware.LedsTotal,
		Animation: c.Animation,
		Night:     c.Night,
	}
}

// ApplyRuntime copies the runtime part rc into c. LedsTotal is ignored.
func (c *Config) ApplyRuntime(rc RuntimeConfig) {
	c.Animation = rc.Animation
	c.Night = rc.Night
}
