package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("server.port must be between 1 and 65535"))
	}

	// Buffer validation
	if c.Buffer.Capacity <= 0 {
		errs = append(errs, errors.New("buffer.capacity must be positive"))
	}

	// Monitor validation
	if c.Monitor.Interval <= 0 {
		errs = append(errs, errors.New("monitor.interval must be positive"))
	}
	if c.Monitor.MinSamples <= 0 {
		errs = append(errs, errors.New("monitor.min_samples must be positive"))
	}
	if c.Monitor.MinSamples > c.Buffer.Capacity {
		errs = append(errs, errors.New("monitor.min_samples must not exceed buffer.capacity"))
	}
	if c.Monitor.RunTimeout < 0 {
		errs = append(errs, errors.New("monitor.run_timeout must not be negative"))
	}

	// Drift validation
	if c.Drift.PThreshold <= 0 || c.Drift.PThreshold >= 1 {
		errs = append(errs, errors.New("drift.p_threshold must be between 0 and 1"))
	}
	if c.Drift.ShareThreshold <= 0 || c.Drift.ShareThreshold > 1 {
		errs = append(errs, errors.New("drift.share_threshold must be between 0 and 1"))
	}

	// Reports validation
	if c.Reports.Dir == "" {
		errs = append(errs, errors.New("reports.dir is required"))
	}

	// Database validation (only when the audit sink is enabled)
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
