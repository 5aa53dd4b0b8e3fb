package config

import (
	"math"
	"testing"
	"time"

	"github.com/benbeisheim/boardview-backend/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "3000" || cfg.TickRate != 60 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Geometry != model.DefaultGeometry() {
		t.Fatalf("geometry %+v differs from the default", cfg.Geometry)
	}
	if got := cfg.TickInterval(); got != time.Second/60 {
		t.Fatalf("tick interval %v", got)
	}
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load([]string{"-port", "8081", "-tick", "30", "-origins", "http://a.test, http://b.test,", "-square-size", "2"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8081" || cfg.TickRate != 30 {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	origins := cfg.Origins()
	if len(origins) != 2 || origins[0] != "http://a.test" || origins[1] != "http://b.test" {
		t.Fatalf("origins %q", origins)
	}
	if cfg.Geometry.SquareSize != 2 || math.Abs(cfg.Geometry.TableLength-25.6) > 1e-9 {
		t.Fatalf("geometry not rescaled: %+v", cfg.Geometry)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"ZeroTick", []string{"-tick", "0"}},
		{"NegativeSquare", []string{"-square-size", "-1"}},
		{"UnknownFlag", []string{"-colour", "red"}},
		{"EmptyPort", []string{"-port", ""}},
		{"TickTooFast", []string{"-tick", "2000000000"}},
		{"WildcardWithCredentials", []string{"-origins", "*"}},
		{"NegativeIdle", []string{"-idle-timeout", "-1s"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args); err == nil {
				t.Fatalf("expected an error for %v", tt.args)
			}
		})
	}
}

func TestWildcardOriginWithoutCredentials(t *testing.T) {
	cfg, err := Load([]string{"-origins", "*", "-credentials=false", "-tick", "1000"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Credentials || cfg.TickInterval() != time.Millisecond {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
