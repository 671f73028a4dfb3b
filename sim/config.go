package sim

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// SimConfig is the top-level simulation configuration.
// Loaded from YAML via LoadSimConfig(path); omitted fields take the defaults
// from DefaultSimConfig.
type SimConfig struct {
	// Quanta are the per-queue time quanta in ms, highest priority first.
	// Must have exactly NumQueues positive entries.
	Quanta []int64 `yaml:"quanta,omitempty"`
	// BoostInterval is the anti-starvation boost period in ticks.
	BoostInterval int64 `yaml:"boost_interval,omitempty"`
	// Seed drives all randomized program behavior.
	Seed int64 `yaml:"seed,omitempty"`
	// Cycles is the number of scheduling cycles a batch run simulates.
	Cycles int `yaml:"cycles,omitempty"`
	// Workload describes the process set to create before simulating.
	Workload []ProcessSpec `yaml:"workload,omitempty"`
	// ProgramCatalog optionally points at a YAML overlay that adds or
	// re-tunes entries of the built-in program catalog.
	ProgramCatalog string `yaml:"program_catalog,omitempty"`
}

// ProcessSpec describes one group of processes in the workload.
type ProcessSpec struct {
	// Program names a catalog entry driving yield/run behavior. Empty means
	// no program: the process alternates demotion and promotion.
	Program string `yaml:"program,omitempty"`
	// Count is how many such processes to create (default 1).
	Count int `yaml:"count,omitempty"`
	// Queue optionally admits the processes at a specific priority queue
	// instead of the default lowest-priority admission.
	Queue *int `yaml:"queue,omitempty"`
}

// DefaultSimConfig returns the configuration a plain `schedsim run` uses.
func DefaultSimConfig() *SimConfig {
	quanta := DefaultQuanta()
	return &SimConfig{
		Quanta:        quanta[:],
		BoostInterval: DefaultBoostInterval,
		Seed:          42,
		Cycles:        25,
		Workload: []ProcessSpec{
			{Program: "compiler", Count: 2},
			{Program: "web_browser", Count: 2},
			{Program: "text_editor", Count: 1},
			{Program: "database", Count: 1},
			{Program: "backup", Count: 1},
		},
	}
}

// QuantaArray returns the configured quanta as a fixed-size array.
func (c *SimConfig) QuantaArray() [NumQueues]int64 {
	var out [NumQueues]int64
	copy(out[:], c.Quanta)
	return out
}

// Validate checks configuration invariants.
func (c *SimConfig) Validate() error {
	if len(c.Quanta) != NumQueues {
		return fmt.Errorf("config: expected %d quanta, got %d", NumQueues, len(c.Quanta))
	}
	for q, v := range c.Quanta {
		if v <= 0 {
			return fmt.Errorf("config: quantum for Q%d must be positive, got %d", q, v)
		}
	}
	if c.BoostInterval <= 0 {
		return fmt.Errorf("config: boost_interval must be positive, got %d", c.BoostInterval)
	}
	if c.Cycles < 0 {
		return fmt.Errorf("config: cycles must be non-negative, got %d", c.Cycles)
	}
	for i, spec := range c.Workload {
		if spec.Queue != nil && (*spec.Queue < 0 || *spec.Queue >= NumQueues) {
			return fmt.Errorf("config: workload[%d] queue %d out of range 0-%d", i, *spec.Queue, NumQueues-1)
		}
	}
	return nil
}

// LoadSimConfig reads a SimConfig from a YAML file, applying defaults for
// omitted fields and validating the result.
func LoadSimConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sim config %s: %w", path, err)
	}

	cfg := &SimConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing sim config %s: %w", path, err)
	}

	defaults := DefaultSimConfig()
	if len(cfg.Quanta) == 0 {
		cfg.Quanta = defaults.Quanta
	}
	if cfg.BoostInterval == 0 {
		cfg.BoostInterval = defaults.BoostInterval
	}
	if cfg.Seed == 0 {
		cfg.Seed = defaults.Seed
	}
	if cfg.Cycles == 0 {
		cfg.Cycles = defaults.Cycles
	}
	if len(cfg.Workload) == 0 {
		cfg.Workload = defaults.Workload
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.Debugf("Loaded sim config from %s: quanta=%v boost=%d cycles=%d", path, cfg.Quanta, cfg.BoostInterval, cfg.Cycles)
	return cfg, nil
}
