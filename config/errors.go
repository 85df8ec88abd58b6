package config

import "github.com/openmirror/landingzone/pkg/errors"

// Package-specific error codes for configuration
var (
	ErrConfigFileReadFailed    = errors.MustNewCode("config.file_read_failed")
	ErrConfigFileParseFailed   = errors.MustNewCode("config.file_parse_failed")
	ErrConfigFileMarshalFailed = errors.MustNewCode("config.file_marshal_failed")
	ErrConfigFileWriteFailed   = errors.MustNewCode("config.file_write_failed")
	ErrConfigValidationFailed  = errors.MustNewCode("config.validation_failed")
	ErrStorageValidationFailed = errors.MustNewCode("config.storage_validation_failed")
	ErrLogSetupFailed          = errors.MustNewCode("config.log_setup_failed")
)
