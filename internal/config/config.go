// Package config loads tool configuration from flags, environment,
// and an optional readycheck.yaml file via viper.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/jandubois/readycheck/internal/check"
)

// Config holds everything the commands need beyond their own flags.
type Config struct {
	Hosts          []string      // default target hosts for check
	SSHUser        string        // remote user, empty for ssh default
	SSHOptions     []string      // extra ssh -o options
	MaxConcurrent  int           // hosts checked in parallel
	ProbeTimeout   time.Duration // per-probe deadline
	DockerImage    string        // image for the docker pull/run tests
	MinFreeGB      float64       // root filesystem threshold
	MinMemoryMB    int           // physical memory threshold
	KeyInstallPath string        // where deploy-key installs the key
}

// SetDefaults registers the built-in defaults with viper. Called once
// from command initialization, before any config file is read.
func SetDefaults() {
	defs := check.DefaultOptions()
	viper.SetDefault("hosts", []string{})
	viper.SetDefault("ssh-user", "")
	viper.SetDefault("ssh-options", []string{})
	viper.SetDefault("max-concurrent", 4)
	viper.SetDefault("probe-timeout", "30s")
	viper.SetDefault("docker-image", defs.DockerImage)
	viper.SetDefault("min-free-gb", defs.MinFreeGB)
	viper.SetDefault("min-memory-mb", defs.MinMemoryMB)
	viper.SetDefault("key-install-path", "~/.ssh/id_migration")
}

// Load materializes the configuration from viper's merged sources.
func Load() *Config {
	return &Config{
		Hosts:          viper.GetStringSlice("hosts"),
		SSHUser:        viper.GetString("ssh-user"),
		SSHOptions:     viper.GetStringSlice("ssh-options"),
		MaxConcurrent:  viper.GetInt("max-concurrent"),
		ProbeTimeout:   viper.GetDuration("probe-timeout"),
		DockerImage:    viper.GetString("docker-image"),
		MinFreeGB:      viper.GetFloat64("min-free-gb"),
		MinMemoryMB:    viper.GetInt("min-memory-mb"),
		KeyInstallPath: viper.GetString("key-install-path"),
	}
}

// CheckOptions derives the battery options from the configuration.
func (c *Config) CheckOptions() check.Options {
	return check.Options{
		MinFreeGB:   c.MinFreeGB,
		MinMemoryMB: c.MinMemoryMB,
		DockerImage: c.DockerImage,
		Timeout:     c.ProbeTimeout,
	}
}
