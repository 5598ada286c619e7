package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-ecg/ecg/beat"
	"github.com/cwbudde/algo-ecg/ecg/filter"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("empty document: %+v", cfg)
	}
	if cfg.Window() != 200 || cfg.ClassCap != 800 || cfg.NComponents != 60 || cfg.Pattern != "*.hea" {
		t.Fatalf("defaults %+v", cfg)
	}
}

func TestParseConfig_Overrides(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
data_dir: /data/mitdb
pattern: "*.dat"
lead: 1
window_left: 90
window_right: 110
highpass_cutoff_hz: 1
lowpass_cutoff_hz: 30
filter_order: 2
class_cap: -1
sampling: random
seed: 42
required_classes: [N, V]
n_components: 10
workers: 3
quality_check: false
labels:
  N: [N, L, R]
  V: [V, E]
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/data/mitdb" || cfg.Pattern != "*.dat" || cfg.Lead != 1 || cfg.Window() != 200 {
		t.Fatalf("parsed %+v", cfg)
	}
	if cfg.Filter() != (filter.Config{HighpassHz: 1, LowpassHz: 30, Order: 2}) {
		t.Fatalf("filter %+v", cfg.Filter())
	}
	if cfg.ClassCap != -1 || cfg.Sampling != SamplingRandom || cfg.Seed != 42 || cfg.QualityCheck {
		t.Fatalf("balancing %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.RequiredClasses, []beat.Class{beat.N, beat.V}) {
		t.Fatalf("required %v", cfg.RequiredClasses)
	}
	if cfg.Annotator != "atr" {
		t.Fatalf("annotator default lost: %q", cfg.Annotator)
	}

	tbl, err := cfg.LabelTable()
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := tbl.Lookup("E"); !ok || c != beat.V {
		t.Fatal("label override not applied")
	}
	if _, ok := tbl.Lookup("A"); ok {
		t.Fatal("override must replace the default table")
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "windw_left: 3"},
		{"not yaml", "lead: [1"},
		{"negative lead", "lead: -1"},
		{"empty window", "window_left: 0\nwindow_right: 0"},
		{"zero cap", "class_cap: 0"},
		{"bad sampling", "sampling: stratified"},
		{"components above window", "n_components: 201"},
		{"zero components", "n_components: 0"},
		{"negative workers", "workers: -2"},
		{"inverted band", "highpass_cutoff_hz: 30"},
		{"zero order", "filter_order: 0"},
		{"unknown required class", "required_classes: [X]"},
		{"unknown label class", "labels:\n  Z: [N]"},
		{"symbol in two classes", "labels:\n  N: [N]\n  V: [N]"},
		{"empty pattern", `pattern: ""`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tc.doc)); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestValidate_FilterErrorsKeepTheirSentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilterOrder = 0
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, filter.ErrInvalidFilterConfiguration) {
		t.Fatalf("got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beatpca.yaml")
	if err := os.WriteFile(path, []byte("n_components: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NComponents != 5 {
		t.Fatalf("n_components %d", cfg.NComponents)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestSegmentKey_DataDir(t *testing.T) {
	abs, err := filepath.Abs("mitdb")
	if err != nil {
		t.Fatal(err)
	}
	rel := DefaultConfig()
	rel.DataDir = "mitdb"
	full := DefaultConfig()
	full.DataDir = abs + string(filepath.Separator)
	other := DefaultConfig()
	other.DataDir = "otherdb"

	if rel.segmentKey().DataDir != full.segmentKey().DataDir {
		t.Fatalf("%q and %q differ", rel.segmentKey().DataDir, full.segmentKey().DataDir)
	}
	if rel.segmentKey().DataDir == other.segmentKey().DataDir {
		t.Fatal("different databases share a key")
	}
}
