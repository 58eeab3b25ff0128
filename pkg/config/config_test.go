package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("valid config", func(t *testing.T) {
		configContent := `
station:
  callsign: "VK4TMZ"
  grid: "QG62"

paths:
  data_root: "/data/js8"

recording:
  mcast_addr: "239.1.1.1:5004"

aprs:
  enabled: true
  user: "VK4TMZ"
  passcode: "23719"
  reporter: "VK4TMZ"

logging:
  level: "debug"
`
		configPath := filepath.Join(tempDir, "valid.yaml")
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}

		if cfg.Station.Callsign != "VK4TMZ" {
			t.Errorf("Station.Callsign = %q, want VK4TMZ", cfg.Station.Callsign)
		}
		if cfg.Paths.RecorderBin != "pcmrecord" {
			t.Errorf("default Paths.RecorderBin = %q, want pcmrecord", cfg.Paths.RecorderBin)
		}
		if cfg.APRS.Host != "asia.aprs2.net" {
			t.Errorf("default APRS.Host = %q, want asia.aprs2.net", cfg.APRS.Host)
		}
		if cfg.APRS.Port != 14580 {
			t.Errorf("default APRS.Port = %d, want 14580", cfg.APRS.Port)
		}

		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(tempDir, "does-not-exist.yaml")); err == nil {
			t.Fatal("expected an error for a missing config file")
		}
	})
}

func TestValidateRequiresStationIdentity(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing station callsign/grid")
	}
}

func TestValidateRequiresAPRSCredentialsWhenEnabled(t *testing.T) {
	cfg := &Config{}
	cfg.Station.Callsign = "VK4TMZ"
	cfg.Station.Grid = "QG62"
	cfg.APRS.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when aprs.enabled is true but credentials are missing")
	}

	cfg.APRS.User = "VK4TMZ"
	cfg.APRS.Passcode = "23719"
	cfg.APRS.Reporter = "VK4TMZ"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
