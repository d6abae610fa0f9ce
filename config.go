// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the configuration file.
const (
	EnvRemoteURL = "WEBDRIVER_REMOTE_URL"
	EnvTimeout   = "WEBDRIVER_TIMEOUT"
	EnvBrowser   = "WEBDRIVER_BROWSER"
)

// Config describes how to reach a remote end and what to ask it for.
//
//	remote_url: http://127.0.0.1:4444
//	timeout: 30s
//	capabilities:
//	  browserName: firefox
//	  moz:firefoxOptions:
//	    args: [-headless]
//	headers:
//	  Authorization: Basic dXNlcjpwYXNz
type Config struct {
	RemoteURL    string            `yaml:"remote_url"`
	Timeout      time.Duration     `yaml:"timeout"`
	Capabilities Capabilities      `yaml:"capabilities"`
	FirstMatch   []Capabilities    `yaml:"first_match"`
	Headers      map[string]string `yaml:"headers"`
	// RateLimit is in requests per second; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// DefaultConfig targets a Selenium server on localhost.
func DefaultConfig() Config {
	return Config{
		RemoteURL:    "http://127.0.0.1:4444",
		Timeout:      60 * time.Second,
		Capabilities: Capabilities{},
		RateBurst:    1,
	}
}

// LoadConfig reads a YAML file over DefaultConfig and applies the
// environment overrides. An empty path only applies the overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing YAML: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvRemoteURL)); v != "" {
		c.RemoteURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv(EnvBrowser)); v != "" {
		if c.Capabilities == nil {
			c.Capabilities = Capabilities{}
		}
		c.Capabilities[CapBrowserName] = v
	}
	return nil
}

// Validate checks the fields a driver cannot start without.
func (c Config) Validate() error {
	if c.RemoteURL == "" {
		return errors.New("config: remote_url is required")
	}
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return errors.New("config: rate_limit must not be negative")
	}
	return nil
}

// SessionRequest returns the capabilities to negotiate.
func (c Config) SessionRequest() SessionRequest {
	return SessionRequest{AlwaysMatch: c.Capabilities.Clone(), FirstMatch: c.FirstMatch}
}

// Options returns the driver options described by c.
func (c Config) Options() []Option {
	var opts []Option
	if c.Timeout > 0 {
		opts = append(opts, WithTimeout(c.Timeout))
	}
	if c.RateLimit > 0 {
		burst := c.RateBurst
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, WithRateLimit(rate.Limit(c.RateLimit), burst))
	}
	for k, v := range c.Headers {
		opts = append(opts, WithHeader(k, v))
	}
	return opts
}
