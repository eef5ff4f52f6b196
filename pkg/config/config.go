package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AxisRole describes how a channel's smoothed value is turned into an output.
type AxisRole string

const (
	// RoleAxis is an ordinary continuous axis: calibration mapping + deadband.
	RoleAxis AxisRole = "axis"
	// RoleTrim integrates relative motion into a virtual multi-turn position.
	RoleTrim AxisRole = "trim"
)

// CalibrationMode selects how raw bounds are obtained for an axis.
type CalibrationMode string

const (
	// CalibrationFixed uses the configured min/max as the physical travel extremes.
	CalibrationFixed CalibrationMode = "fixed"
	// CalibrationDynamic learns min/max from observed samples, expanding only.
	CalibrationDynamic CalibrationMode = "dynamic"
)

// Config represents the application configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Loop      LoopConfig      `yaml:"loop"`
	Filter    FilterConfig    `yaml:"filter"`
	Trim      TrimConfig      `yaml:"trim"`
	Axes      []AxisConfig    `yaml:"axes"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Mock      MockConfig      `yaml:"mock"`
}

// SerialConfig contains serial port configuration for the quadrant MCU link.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// LoopConfig contains control-cycle parameters.
type LoopConfig struct {
	Period time.Duration `yaml:"period"` // Fixed inter-cycle delay
}

// FilterConfig contains rolling-average filter parameters.
type FilterConfig struct {
	Window int `yaml:"window"` // Samples per axis in the smoothing window
}

// TrimConfig contains virtual trim accumulator parameters.
type TrimConfig struct {
	Gain float32 `yaml:"gain"` // Scale applied to each smoothed delta
	Low  int     `yaml:"low"`  // Clamp range lower bound
	High int     `yaml:"high"` // Clamp range upper bound
}

// AxisConfig describes one physical axis channel.
type AxisConfig struct {
	Name        string          `yaml:"name"`
	Role        AxisRole        `yaml:"role"`
	Calibration CalibrationMode `yaml:"calibration"`
	RawMin      int             `yaml:"raw_min"` // Fixed calibration lower bound
	RawMax      int             `yaml:"raw_max"` // Fixed calibration upper bound
	Margin      int             `yaml:"margin"`  // Dynamic calibration headroom outside learned bounds
	Deadband    int             `yaml:"deadband"`
}

// TelemetryConfig contains the optional MQTT report publisher configuration.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	NoiseLevel float64       `yaml:"noise_level"` // Noise amplitude in raw ADC counts
	SweepSpeed float64       `yaml:"sweep_speed"` // Simulated lever motion rate (radians/s)
	SampleRate time.Duration `yaml:"sample_rate"` // Time between generated frames
}

// Raw ADC domain and output report domain of the quadrant hardware.
const (
	ADCMax    = 1023
	OutputMin = 0
	OutputMax = 1023
)

// Default returns a default configuration matching the shipped hardware tuning.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Loop: LoopConfig{
			Period: 100 * time.Millisecond,
		},
		Filter: FilterConfig{
			Window: 10,
		},
		Trim: TrimConfig{
			Gain: 0.5,
			Low:  OutputMin,
			High: OutputMax,
		},
		Axes: []AxisConfig{
			{Name: "Throttle L", Role: RoleAxis, Calibration: CalibrationFixed, RawMin: 196, RawMax: 1023, Deadband: 1},
			{Name: "Throttle R", Role: RoleAxis, Calibration: CalibrationFixed, RawMin: 196, RawMax: 1023, Deadband: 1},
			{Name: "Trim", Role: RoleTrim, Calibration: CalibrationFixed, RawMin: 196, RawMax: 1023},
			{Name: "Mixture 1", Role: RoleAxis, Calibration: CalibrationFixed, RawMin: 196, RawMax: 1023},
			{Name: "Mixture 2", Role: RoleAxis, Calibration: CalibrationFixed, RawMin: 196, RawMax: 1023},
			{Name: "TBD Axis", Role: RoleAxis, Calibration: CalibrationFixed, RawMin: 196, RawMax: 1023},
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Broker:   "tcp://localhost:1883",
			ClientID: "quadrant-bridge",
			Topic:    "quadrant/report",
		},
		Mock: MockConfig{
			NoiseLevel: 3,
			SweepSpeed: 0.5,
			SampleRate: 20 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// TrimIndex returns the index of the first trim-role axis, or -1 if none.
func (c *Config) TrimIndex() int {
	for i, a := range c.Axes {
		if a.Role == RoleTrim {
			return i
		}
	}
	return -1
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Loop.Period == 0 {
		c.Loop.Period = def.Loop.Period
	}

	if c.Filter.Window == 0 {
		c.Filter.Window = def.Filter.Window
	}

	if c.Trim.Gain == 0 {
		c.Trim.Gain = def.Trim.Gain
	}
	if c.Trim.High == 0 {
		c.Trim.High = def.Trim.High
	}

	if len(c.Axes) == 0 {
		c.Axes = def.Axes
	}
	for i := range c.Axes {
		if c.Axes[i].Role == "" {
			c.Axes[i].Role = RoleAxis
		}
		if c.Axes[i].Calibration == "" {
			c.Axes[i].Calibration = CalibrationFixed
		}
		if c.Axes[i].Calibration == CalibrationFixed && c.Axes[i].RawMax == 0 {
			c.Axes[i].RawMax = ADCMax
		}
		if c.Axes[i].Calibration == CalibrationDynamic && c.Axes[i].Margin == 0 {
			c.Axes[i].Margin = 10
		}
	}

	if c.Telemetry.Broker == "" {
		c.Telemetry.Broker = def.Telemetry.Broker
	}
	if c.Telemetry.ClientID == "" {
		c.Telemetry.ClientID = def.Telemetry.ClientID
	}
	if c.Telemetry.Topic == "" {
		c.Telemetry.Topic = def.Telemetry.Topic
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.SweepSpeed == 0 {
		c.Mock.SweepSpeed = def.Mock.SweepSpeed
	}
}

// validate rejects configurations the pipeline cannot run with.
func (c *Config) validate() error {
	if c.Filter.Window < 1 {
		return fmt.Errorf("filter window must be at least 1, got %d", c.Filter.Window)
	}
	if c.Trim.Low >= c.Trim.High {
		return fmt.Errorf("trim clamp range invalid: low %d >= high %d", c.Trim.Low, c.Trim.High)
	}
	for i, a := range c.Axes {
		if a.Role != RoleAxis && a.Role != RoleTrim {
			return fmt.Errorf("axis %d (%s): unknown role %q", i, a.Name, a.Role)
		}
		if a.Calibration != CalibrationFixed && a.Calibration != CalibrationDynamic {
			return fmt.Errorf("axis %d (%s): unknown calibration mode %q", i, a.Name, a.Calibration)
		}
		if a.Calibration == CalibrationFixed && a.RawMin >= a.RawMax {
			return fmt.Errorf("axis %d (%s): fixed bounds invalid: min %d >= max %d", i, a.Name, a.RawMin, a.RawMax)
		}
		if a.Deadband < 0 {
			return fmt.Errorf("axis %d (%s): negative deadband %d", i, a.Name, a.Deadband)
		}
	}
	return nil
}
