package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-ecg/ecg/beat"
	"github.com/cwbudde/algo-ecg/ecg/filter"
	"github.com/cwbudde/algo-ecg/ecg/wfdb"
)

var (
	// ErrInvalidConfig reports a configuration that cannot run.
	ErrInvalidConfig = errors.New("pipeline: invalid configuration")
	// ErrNoRecords is returned when the source lists no records.
	ErrNoRecords = wfdb.ErrNoRecords
)

// Sampling strategies of the class balancer.
const (
	SamplingFirst  = "first"
	SamplingRandom = "random"
)

// Defaults of DefaultConfig.
const (
	DefaultClassCap    = 800
	DefaultNComponents = 60
	DefaultSeed        = 1
)

// Config holds every setting of a run. The zero value is not valid; start
// from DefaultConfig or LoadConfig.
type Config struct {
	DataDir   string `yaml:"data_dir" json:"data_dir"`
	Pattern   string `yaml:"pattern" json:"pattern"`
	Annotator string `yaml:"annotator" json:"annotator"`
	Lead      int    `yaml:"lead" json:"lead"`

	WindowLeft  int `yaml:"window_left" json:"window_left"`
	WindowRight int `yaml:"window_right" json:"window_right"`

	HighpassHz  float64 `yaml:"highpass_cutoff_hz" json:"highpass_cutoff_hz"`
	LowpassHz   float64 `yaml:"lowpass_cutoff_hz" json:"lowpass_cutoff_hz"`
	FilterOrder int     `yaml:"filter_order" json:"filter_order"`

	// ClassCap is the largest number of beats kept per class. A negative
	// cap keeps every beat.
	ClassCap        int          `yaml:"class_cap" json:"class_cap"`
	Sampling        string       `yaml:"sampling" json:"sampling"`
	Seed            uint64       `yaml:"seed" json:"seed"`
	RequiredClasses []beat.Class `yaml:"required_classes" json:"required_classes"`

	NComponents int `yaml:"n_components" json:"n_components"`
	// Workers bounds the number of records processed at once; 0 uses
	// GOMAXPROCS.
	Workers int `yaml:"workers" json:"workers"`

	// CacheDir enables the per-record segmentation cache when set.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
	// QualityCheck measures the baseline-wander share of each lead before
	// and after filtering.
	QualityCheck bool `yaml:"quality_check" json:"quality_check"`

	// Labels overrides the symbol table: class name to annotation symbols.
	Labels map[string][]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// DefaultConfig returns the settings of the reference analysis.
func DefaultConfig() Config {
	return Config{
		Pattern:         wfdb.DefaultPattern,
		Annotator:       wfdb.DefaultAnnotator,
		WindowLeft:      beat.DefaultLeft,
		WindowRight:     beat.DefaultRight,
		HighpassHz:      filter.DefaultHighpassHz,
		LowpassHz:       filter.DefaultLowpassHz,
		FilterOrder:     filter.DefaultOrder,
		ClassCap:        DefaultClassCap,
		Sampling:        SamplingFirst,
		Seed:            DefaultSeed,
		RequiredClasses: []beat.Class{beat.N},
		NComponents:     DefaultNComponents,
		QualityCheck:    true,
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("pipeline: reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Window returns the beat vector length.
func (c Config) Window() int { return c.WindowLeft + c.WindowRight }

// Filter returns the band-pass settings.
func (c Config) Filter() filter.Config {
	return filter.Config{HighpassHz: c.HighpassHz, LowpassHz: c.LowpassHz, Order: c.FilterOrder}
}

// LabelTable returns the configured symbol table, or the default table
// when no override is set.
func (c Config) LabelTable() (beat.LabelTable, error) {
	if len(c.Labels) == 0 {
		return beat.DefaultLabelTable(), nil
	}
	groups := make(map[beat.Class][]string, len(c.Labels))
	for name, symbols := range c.Labels {
		cls, err := beat.ParseClass(name)
		if err != nil {
			return nil, err
		}
		groups[cls] = append(groups[cls], symbols...)
	}
	return beat.NewLabelTable(groups)
}

// Validate checks every setting that can be checked before reading data.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case c.Pattern == "":
		return invalid("pattern is empty")
	case c.Lead < 0:
		return invalid("lead %d is negative", c.Lead)
	case c.WindowLeft < 0 || c.WindowRight < 0 || c.Window() == 0:
		return invalid("window [-%d, +%d) is empty or negative", c.WindowLeft, c.WindowRight)
	case c.ClassCap == 0:
		return invalid("class_cap is 0; use a negative value to keep every beat")
	case c.Sampling != SamplingFirst && c.Sampling != SamplingRandom:
		return invalid("sampling %q, want %q or %q", c.Sampling, SamplingFirst, SamplingRandom)
	case c.NComponents < 1:
		return invalid("n_components %d is below 1", c.NComponents)
	case c.NComponents > c.Window():
		return invalid("n_components %d exceeds the window length %d", c.NComponents, c.Window())
	case c.Workers < 0:
		return invalid("workers %d is negative", c.Workers)
	}

	if err := c.Filter().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for _, cls := range c.RequiredClasses {
		if !cls.Valid() {
			return invalid("required class %v", cls)
		}
	}
	if _, err := c.LabelTable(); err != nil {
		return fmt.Errorf("%w: labels: %w", ErrInvalidConfig, err)
	}
	return nil
}

// segmentKey holds the settings that determine the beats of one record.
type segmentKey struct {
	DataDir      string
	Annotator    string
	Lead         int
	WindowLeft   int
	WindowRight  int
	Filter       filter.Config
	QualityCheck bool
	Labels       map[string][]string
}

func (c Config) segmentKey() segmentKey {
	labels := make(map[string][]string, len(c.Labels))
	for k, v := range c.Labels {
		s := slices.Clone(v)
		slices.Sort(s)
		labels[k] = s
	}
	dir := filepath.Clean(c.DataDir)
	if abs, err := filepath.Abs(c.DataDir); err == nil {
		dir = abs
	}
	return segmentKey{
		DataDir:      dir,
		Annotator:    c.Annotator,
		Lead:         c.Lead,
		WindowLeft:   c.WindowLeft,
		WindowRight:  c.WindowRight,
		Filter:       c.Filter(),
		QualityCheck: c.QualityCheck,
		Labels:       labels,
	}
}
