package scrub

import (
	"errors"
	"reflect"
	"testing"
)

func TestInvoiceConfig(t *testing.T) {
	cfg := InvoiceConfig()
	if !cfg.StripScripts || !cfg.StripComments {
		t.Error("invoice config must strip scripts and comments")
	}
	if cfg.StripStyles || cfg.StripNoscript || cfg.StripIframes {
		t.Error("invoice config must not strip anything else")
	}
	if len(cfg.RemoveSelectors) != 0 {
		t.Errorf("expected no selectors, got %v", cfg.RemoveSelectors)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("invoice config should validate: %v", err)
	}
}

func TestPresetStrict(t *testing.T) {
	cfg := PresetStrict()
	if !cfg.StripScripts || !cfg.StripComments || !cfg.StripStyles || !cfg.StripNoscript || !cfg.StripIframes {
		t.Error("strict preset should enable every removal")
	}
	if len(cfg.RemoveSelectors) == 0 {
		t.Error("strict preset should carry selectors")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("strict preset should validate: %v", err)
	}
}

func TestPreset(t *testing.T) {
	t.Run("known names", func(t *testing.T) {
		for _, name := range []string{"invoice", "strict", " Strict "} {
			cfg, err := Preset(name)
			if err != nil {
				t.Fatalf("Preset(%q): %v", name, err)
			}
			if cfg == nil {
				t.Fatalf("Preset(%q) returned nil", name)
			}
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := Preset("aggressive")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("presets are independent copies", func(t *testing.T) {
		a, _ := Preset("strict")
		a.RemoveSelectors[0] = "changed"
		b, _ := Preset("strict")
		if b.RemoveSelectors[0] == "changed" {
			t.Error("preset mutation leaked into later calls")
		}
	})
}

func TestPresetNames(t *testing.T) {
	want := []string{"invoice", "strict"}
	if got := PresetNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("PresetNames() = %v, want %v", got, want)
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputPretty, false},
		{"pretty", OutputPretty, false},
		{"HTML", OutputHTML, false},
		{" text ", OutputText, false},
		{"markdown", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"empty config", &Config{}, false},
		{"good selectors", &Config{RemoveSelectors: []string{"div.ad", "#x"}, KeepSelectors: []string{"[data-keep]"}}, false},
		{"bad remove selector", &Config{RemoveSelectors: []string{"div[["}}, true},
		{"bad keep selector", &Config{KeepSelectors: []string{":nope("}}, true},
		{"bad output", &Config{Output: "pdf"}, true},
		{"negative size", &Config{MaxInputBytes: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := &Config{
		StripScripts:    true,
		RemoveSelectors: []string{".a"},
		Output:          OutputPretty,
	}
	other := &Config{
		StripStyles:     true,
		RemoveSelectors: []string{".a", ".b"},
		KeepSelectors:   []string{".keep"},
		Output:          OutputText,
		MaxInputBytes:   1024,
	}

	merged := base.Merge(other)

	if !merged.StripScripts || !merged.StripStyles {
		t.Error("expected boolean options to be OR-ed")
	}
	if !reflect.DeepEqual(merged.RemoveSelectors, []string{".a", ".b"}) {
		t.Errorf("unexpected remove selectors: %v", merged.RemoveSelectors)
	}
	if !reflect.DeepEqual(merged.KeepSelectors, []string{".keep"}) {
		t.Errorf("unexpected keep selectors: %v", merged.KeepSelectors)
	}
	if merged.Output != OutputText {
		t.Errorf("expected other's output to win, got %q", merged.Output)
	}
	if merged.MaxInputBytes != 1024 {
		t.Errorf("expected size limit 1024, got %d", merged.MaxInputBytes)
	}

	if len(base.RemoveSelectors) != 1 || base.StripStyles {
		t.Error("Merge must not modify the receiver")
	}

	t.Run("nil other returns copy", func(t *testing.T) {
		cp := base.Merge(nil)
		if cp == base {
			t.Error("expected a copy")
		}
		if !reflect.DeepEqual(cp, base) {
			t.Error("expected equal contents")
		}
	})

	t.Run("empty output keeps base", func(t *testing.T) {
		if got := base.Merge(&Config{}).Output; got != OutputPretty {
			t.Errorf("expected pretty, got %q", got)
		}
	})
}
