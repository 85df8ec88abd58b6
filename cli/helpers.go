package cli

import (
	"github.com/openmirror/landingzone/config"
	"github.com/openmirror/landingzone/mirror"
	"github.com/openmirror/landingzone/pkg/errors"
	"github.com/openmirror/landingzone/store"
)

// Package-specific error codes for CLI plumbing
var (
	CliConfigMissing = errors.MustNewCode("cli.config_missing")
)

// loadConfig resolves the effective configuration file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultFileName
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, errors.New(CliConfigMissing, "could not load configuration, run 'lzmirror init' first", err).AddContext("file", path)
	}
	return cfg, nil
}

// openMirror builds the store and writer from the configuration.
func openMirror(cfg *config.Config) (store.Store, *mirror.Writer, error) {
	st, err := cfg.Storage.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return st, mirror.NewWriter(st, cfg.WriterConfig(), logger), nil
}
