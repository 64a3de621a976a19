// Package config assembles runtime settings from defaults, an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jacksonlee411/unit-roster/internal/infra/docstore"
	s3store "github.com/jacksonlee411/unit-roster/internal/infra/docstore/s3"
)

const (
	DefaultPort     = "5005"
	DefaultDotEnv   = ".env"
	ConfigPathEnv   = "ROSTER_CONFIG"
	defaultMaxBytes = 32 << 20
)

type Config struct {
	HTTPAddr       string `yaml:"http_addr" env:"HTTP_ADDR" validate:"required"`
	MappingPath    string `yaml:"mapping_path" env:"ROSTER_MAPPING_PATH" validate:"required"`
	UploadMaxBytes int64  `yaml:"upload_max_bytes" env:"ROSTER_UPLOAD_MAX_BYTES" validate:"gt=0"`
	UploadRule     string `yaml:"upload_rule" env:"ROSTER_UPLOAD_RULE"`
	AllowlistPath  string `yaml:"allowlist_path" env:"ALLOWLIST_PATH" validate:"required"`

	Authz   AuthzConfig   `yaml:"authz"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type AuthzConfig struct {
	ModelPath     string `yaml:"model_path" env:"AUTHZ_MODEL_PATH" validate:"required"`
	PolicyPath    string `yaml:"policy_path" env:"AUTHZ_POLICY_PATH" validate:"required"`
	Mode          string `yaml:"mode" env:"AUTHZ_MODE" validate:"omitempty,oneof=enforce shadow disabled"`
	DefaultRole   string `yaml:"default_role" env:"AUTHZ_DEFAULT_ROLE"`
	AllowDisabled bool   `yaml:"-" env:"AUTHZ_UNSAFE_ALLOW_DISABLED"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver" env:"ROSTER_STORAGE_DRIVER" validate:"oneof=fs memory s3 postgres sqlite"`
	Dir         string `yaml:"dir" env:"ROSTER_STORAGE_DIR"`
	PostgresDSN string `yaml:"postgres_dsn" env:"ROSTER_STORAGE_POSTGRES_DSN" validate:"required_if=Driver postgres"`
	SQLitePath  string `yaml:"sqlite_path" env:"ROSTER_STORAGE_SQLITE_PATH" validate:"required_if=Driver sqlite"`

	S3Bucket          string `yaml:"s3_bucket" env:"ROSTER_STORAGE_S3_BUCKET" validate:"required_if=Driver s3"`
	S3Prefix          string `yaml:"s3_prefix" env:"ROSTER_STORAGE_S3_PREFIX"`
	S3Region          string `yaml:"s3_region" env:"ROSTER_STORAGE_S3_REGION"`
	S3Endpoint        string `yaml:"s3_endpoint" env:"ROSTER_STORAGE_S3_ENDPOINT" validate:"omitempty,url"`
	S3AccessKeyID     string `yaml:"-" env:"ROSTER_STORAGE_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `yaml:"-" env:"ROSTER_STORAGE_S3_SECRET_ACCESS_KEY"`
	S3SessionToken    string `yaml:"-" env:"ROSTER_STORAGE_S3_SESSION_TOKEN"`
	S3PathStyle       bool   `yaml:"s3_path_style" env:"ROSTER_STORAGE_S3_PATH_STYLE"`
}

type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=json console"`
	Output     string `yaml:"output" env:"LOG_OUTPUT" validate:"oneof=stdout file both"`
	File       string `yaml:"file" env:"LOG_FILE" validate:"required_unless=Output stdout"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" validate:"gte=0"`
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS"`
}

func Default() Config {
	return Config{
		HTTPAddr:       ":" + DefaultPort,
		MappingPath:    "config/roster/donvi_mapping.json",
		UploadMaxBytes: defaultMaxBytes,
		AllowlistPath:  "config/routing/allowlist.yaml",
		Authz: AuthzConfig{
			ModelPath:   "config/access/model.conf",
			PolicyPath:  "config/access/policy.csv",
			Mode:        "shadow",
			DefaultRole: "editor",
		},
		Storage: StorageConfig{Driver: "fs", Dir: "uploads"},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			File:       "logs/roster.log",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load reads path (or $ROSTER_CONFIG when path is empty) on top of the
// defaults. A missing .env file is not an error; a missing config file that
// was asked for is.
func Load(path string) (Config, error) {
	return load(path, DefaultDotEnv)
}

func load(path string, dotenv string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", dotenv, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: env: %w", err)
	}

	if _, ok := os.LookupEnv("HTTP_ADDR"); !ok {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			cfg.HTTPAddr = ":" + port
		}
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.Authz.Mode = strings.ToLower(strings.TrimSpace(cfg.Authz.Mode))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	if verrs, ok := errors.AsType[validator.ValidationErrors](err); ok {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("config: %w", err)
}

func (c Config) DocStore() docstore.Config {
	return docstore.Config{
		Driver: c.Storage.Driver,
		Dir:    c.Storage.Dir,
		S3: s3store.Config{
			Bucket:          c.Storage.S3Bucket,
			Prefix:          c.Storage.S3Prefix,
			Region:          c.Storage.S3Region,
			Endpoint:        c.Storage.S3Endpoint,
			AccessKeyID:     c.Storage.S3AccessKeyID,
			SecretAccessKey: c.Storage.S3SecretAccessKey,
			SessionToken:    c.Storage.S3SessionToken,
			PathStyle:       c.Storage.S3PathStyle,
		},
		PostgresDSN: c.Storage.PostgresDSN,
		SQLitePath:  c.Storage.SQLitePath,
	}
}
