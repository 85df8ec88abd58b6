package config

import (
	"os"

	"github.com/openmirror/landingzone/mirror"
	"github.com/openmirror/landingzone/pkg/errors"
	"github.com/openmirror/landingzone/store"
	"github.com/openmirror/landingzone/store/filesystem"
	"github.com/openmirror/landingzone/store/memory"
	"github.com/openmirror/landingzone/store/s3"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file the CLI looks for.
const DefaultFileName = "lzmirror.yml"

// Config represents the landing-zone client configuration
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Mirror  MirrorConfig  `yaml:"mirror"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`    // "json" or "console"
	FilePath string `yaml:"file_path"` // Path to log file, empty for stderr only
	Console  bool   `yaml:"console"`   // Whether to log to console
}

// StorageConfig selects and configures the store backend
type StorageConfig struct {
	Backend string    `yaml:"backend"` // FILESYSTEM | MEMORY | S3
	Path    string    `yaml:"path"`    // root for filesystem storage
	S3      s3.Config `yaml:"s3"`
}

// MirrorConfig holds the defaults for table identity and data files
type MirrorConfig struct {
	Workspace           string `yaml:"workspace"`
	Database            string `yaml:"database"`
	Schema              string `yaml:"schema"`
	FileExtension       string `yaml:"file_extension"`
	Compression         string `yaml:"compression"`
	CleanupIntervalSecs int    `yaml:"cleanup_interval_secs"`
}

// LoadDefaultConfig returns a default configuration
func LoadDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Console: true,
		},
		Storage: StorageConfig{
			Backend: filesystem.Type,
			Path:    "./landingzone",
		},
		Mirror: MirrorConfig{
			FileExtension:       mirror.DefaultFileExtension,
			Compression:         "snappy",
			CleanupIntervalSecs: 300,
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err).AddContext("file", filename)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err).AddContext("file", filename)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.New(ErrConfigFileMarshalFailed, "failed to marshal config", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err).AddContext("file", filename)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Mirror.Database == "" {
		return errors.New(ErrConfigValidationFailed, "mirror.database is required", nil)
	}
	return nil
}

// Validate validates the storage configuration
func (s *StorageConfig) Validate() error {
	switch s.Backend {
	case filesystem.Type:
		if s.Path == "" {
			return errors.New(ErrStorageValidationFailed, "storage.path is required for the filesystem backend", nil)
		}
	case memory.Type:
		// nothing to validate
	case s3.Type:
		if s.S3.Endpoint == "" || s.S3.Bucket == "" {
			return errors.New(ErrStorageValidationFailed, "storage.s3.endpoint and storage.s3.bucket are required for the s3 backend", nil)
		}
	default:
		return errors.Newf(ErrStorageValidationFailed, "unsupported storage backend: %s", s.Backend)
	}
	return nil
}

// OpenStore constructs the configured store backend.
func (s *StorageConfig) OpenStore() (store.Store, error) {
	switch s.Backend {
	case filesystem.Type:
		return filesystem.New(s.Path), nil
	case memory.Type:
		return memory.New(), nil
	case s3.Type:
		return s3.New(s.S3)
	default:
		return nil, errors.Newf(ErrStorageValidationFailed, "unsupported storage backend: %s", s.Backend)
	}
}

// WriterConfig derives the mirror writer configuration.
func (c *Config) WriterConfig() *mirror.WriterConfig {
	return &mirror.WriterConfig{FileExtension: c.Mirror.FileExtension}
}

// TableID builds a table identity from the configured defaults.
func (c *Config) TableID(table string) mirror.TableID {
	if c.Mirror.Schema != "" {
		return mirror.NewTableIDWithSchema(c.Mirror.Workspace, c.Mirror.Database, c.Mirror.Schema, table)
	}
	return mirror.NewTableID(c.Mirror.Workspace, c.Mirror.Database, table)
}
