// Package config loads the YAML configuration file that supplies
// station identity, data root, subprocess binary paths, and APRS-IS
// credentials not already given on the command line.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the js8spotd configuration.
type Config struct {
	Station struct {
		Callsign string `yaml:"callsign"`
		Grid     string `yaml:"grid"`
	} `yaml:"station"`

	Paths struct {
		DataRoot       string `yaml:"data_root"`
		SpotLog        string `yaml:"spot_log"`
		RecorderBin    string `yaml:"recorder_bin"`
		DemodulatorBin string `yaml:"demodulator_bin"`
	} `yaml:"paths"`

	Recording struct {
		McastAddr string `yaml:"mcast_addr"`
	} `yaml:"recording"`

	APRS struct {
		Enabled   bool   `yaml:"enabled"`
		Host      string `yaml:"host"`
		Port      int    `yaml:"port"`
		User      string `yaml:"user"`
		Passcode  string `yaml:"passcode"`
		Reporter  string `yaml:"reporter"`
		FramesLog string `yaml:"frames_log"`
	} `yaml:"aprs"`

	Logging struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		File       string `yaml:"file"`        // log file path
		MaxSize    int    `yaml:"max_size"`    // maximum size in MB
		MaxBackups int    `yaml:"max_backups"` // number of old log files to keep
		MaxAge     int    `yaml:"max_age"`     // maximum age in days
		Compress   bool   `yaml:"compress"`    // compress old log files
		Console    bool   `yaml:"console"`     // also log to console/stdout
		Structured bool   `yaml:"structured"`  // use structured JSON logging
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Paths.DataRoot == "" {
		cfg.Paths.DataRoot = "/var/lib/js8spotd"
	}
	if cfg.Paths.SpotLog == "" {
		cfg.Paths.SpotLog = "/var/log/js8.log"
	}
	if cfg.Paths.RecorderBin == "" {
		cfg.Paths.RecorderBin = "pcmrecord"
	}
	if cfg.Paths.DemodulatorBin == "" {
		cfg.Paths.DemodulatorBin = "js8"
	}

	if cfg.APRS.Host == "" {
		cfg.APRS.Host = "asia.aprs2.net"
	}
	if cfg.APRS.Port == 0 {
		cfg.APRS.Port = 14580
	}
	if cfg.APRS.FramesLog == "" {
		cfg.APRS.FramesLog = "./aprsis_frames.log"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSize == 0 {
		cfg.Logging.MaxSize = 100 // 100MB
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 5
	}
	if cfg.Logging.MaxAge == 0 {
		cfg.Logging.MaxAge = 30 // 30 days
	}
}

// Validate checks the configuration is usable for the requested
// action; APRS credential requirements are additionally enforced by
// pkg/control when --aprsis is set on the command line.
func (c *Config) Validate() error {
	if c.Station.Callsign == "" {
		return fmt.Errorf("station callsign is required")
	}
	if c.Station.Grid == "" {
		return fmt.Errorf("station grid is required")
	}
	if c.APRS.Enabled {
		if c.APRS.User == "" || c.APRS.Passcode == "" || c.APRS.Reporter == "" {
			return fmt.Errorf("aprs.user, aprs.passcode and aprs.reporter are required when aprs.enabled is true")
		}
	}
	return nil
}
