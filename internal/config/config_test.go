package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TAX_RATE", "")
	t.Setenv("STORAGE_TIMEOUT", "")
	t.Setenv("VENUE_TZ", "UTC")
	t.Setenv("TRACE_SAMPLE_RATIO", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TaxRate.String() != "0.1" {
		t.Errorf("expected default tax rate 0.1, got %s", cfg.TaxRate)
	}
	if cfg.StorageTimeout != 3*time.Second {
		t.Errorf("expected 3s storage timeout, got %s", cfg.StorageTimeout)
	}
	if cfg.VenueLocation != time.UTC {
		t.Errorf("expected UTC venue, got %s", cfg.VenueLocation)
	}
	if cfg.TraceSampleRatio != 1 || cfg.LogLevel != "info" || cfg.Environment != "development" {
		t.Errorf("unexpected telemetry defaults: ratio %v, level %q, env %q", cfg.TraceSampleRatio, cfg.LogLevel, cfg.Environment)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"TAX_RATE":           "ten percent",
		"STORAGE_TIMEOUT":    "soon",
		"OUTBOX_BATCH":       "-1",
		"VENUE_TZ":           "Mars/Olympus",
		"TRACE_SAMPLE_RATIO": "1.5",
		"LOG_LEVEL":          "loud",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", key, value)
			}
		})
	}

	t.Run("negative tax", func(t *testing.T) {
		t.Setenv("TAX_RATE", "-0.1")
		if _, err := Load(); err == nil {
			t.Error("expected error for negative tax rate")
		}
	})
}
