package app

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/revocation"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/service"
	"github.com/aussiebroadwan/fastkep/pkg/jwtx"
)

// ConfigFileEnv names an optional YAML file loaded before the environment.
// Keys in the file are the lower-cased environment variable names.
const ConfigFileEnv = "CONFIG_FILE"

type Config struct {
	Env                  string        `koanf:"env"`        // dev, staging, prod (default: dev)
	LogLevel             string        `koanf:"log_level"`  // debug, info, warn, error (default: info)
	LogFormat            string        `koanf:"log_format"` // json, text (default: json)
	Port                 int           `koanf:"port"`
	ShutdownGracePeriod  time.Duration `koanf:"shutdown_grace_period"`
	HousekeepingInterval time.Duration `koanf:"housekeeping_interval"`

	// DatabaseURL selects PostgreSQL when set; otherwise DatabaseFile is
	// opened with SQLite.
	DatabaseURL  string `koanf:"database_url"`
	DatabaseFile string `koanf:"auth_database_file"`
	PepperFile   string `koanf:"auth_pepper_file"`

	Issuer          string        `koanf:"auth_issuer"`
	SigningAlg      string        `koanf:"auth_signing_alg"`      // HS256 or EdDSA
	SigningSecret   string        `koanf:"auth_signing_secret"`   // HS256; empty generates an ephemeral secret
	SigningKeyFile  string        `koanf:"auth_signing_key_file"` // EdDSA; created on first start
	AccessTokenTTL  time.Duration `koanf:"auth_access_token_ttl"`
	RefreshTokenTTL time.Duration `koanf:"auth_refresh_token_ttl"`

	RevocationBackend       string        `koanf:"revocation_backend"` // database, redis, memory
	RedisURL                string        `koanf:"redis_url"`
	RevocationLookupTimeout time.Duration `koanf:"revocation_lookup_timeout"`

	PasswordMinLength      int  `koanf:"password_min_length"`
	PasswordRequireUpper   bool `koanf:"password_require_upper"`
	PasswordRequireLower   bool `koanf:"password_require_lower"`
	PasswordRequireDigit   bool `koanf:"password_require_digit"`
	PasswordRequireSpecial bool `koanf:"password_require_special"`

	DocumentTimezone     string `koanf:"document_timezone"`
	DocumentPDFConverter string `koanf:"document_pdf_converter"` // wkhtmltopdf path; empty serves HTML
}

func DefaultConfig() Config {
	policy := service.DefaultPasswordPolicy()
	return Config{
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,

		DatabaseFile: "fastkep.db",
		PepperFile:   "pepper",

		Issuer:          "fastkep",
		SigningAlg:      jwtx.AlgorithmHS256,
		AccessTokenTTL:  service.DefaultAccessTTL,
		RefreshTokenTTL: service.DefaultRefreshTTL,

		RevocationBackend:       revocation.BackendDatabase,
		RevocationLookupTimeout: service.DefaultLookupTimeout,

		PasswordMinLength:      policy.MinLength,
		PasswordRequireUpper:   policy.RequireUpper,
		PasswordRequireLower:   policy.RequireLower,
		PasswordRequireDigit:   policy.RequireDigit,
		PasswordRequireSpecial: policy.RequireSpecial,

		DocumentTimezone: "Europe/Athens",
	}
}

// LoadConfig layers DefaultConfig, the optional CONFIG_FILE and the process
// environment, then validates the result. Empty variables count as unset.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	known := configKeys()
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(key)
			if _, ok := known[key]; !ok || value == "" {
				return "", nil
			}
			return key, value
		},
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// configKeys lists the koanf tags of Config so unrelated environment
// variables are never decoded.
func configKeys() map[string]struct{} {
	t := reflect.TypeFor[Config]()
	keys := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		if tag := t.Field(i).Tag.Get("koanf"); tag != "" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}

func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Issuer) == "" {
		errs = append(errs, errors.New("AUTH_ISSUER must not be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}

	switch strings.ToUpper(c.SigningAlg) {
	case strings.ToUpper(jwtx.AlgorithmHS256), strings.ToUpper(jwtx.AlgorithmEdDSA):
	default:
		errs = append(errs, fmt.Errorf("AUTH_SIGNING_ALG %q is not HS256 or EdDSA", c.SigningAlg))
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	} else if c.AccessTokenTTL >= c.RefreshTokenTTL {
		errs = append(errs, errors.New("AUTH_ACCESS_TOKEN_TTL must be shorter than AUTH_REFRESH_TOKEN_TTL"))
	}

	switch c.RevocationBackend {
	case revocation.BackendDatabase, revocation.BackendMemory:
	case revocation.BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis revocation backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("REVOCATION_BACKEND %q is not database, redis or memory", c.RevocationBackend))
	}
	if c.RevocationLookupTimeout <= 0 {
		errs = append(errs, errors.New("REVOCATION_LOOKUP_TIMEOUT must be positive"))
	}
	if c.HousekeepingInterval <= 0 {
		errs = append(errs, errors.New("HOUSEKEEPING_INTERVAL must be positive"))
	}

	if c.PasswordMinLength < 0 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH must not be negative (0 disables the rule)"))
	}
	if _, err := time.LoadLocation(c.DocumentTimezone); err != nil {
		errs = append(errs, fmt.Errorf("DOCUMENT_TIMEZONE: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// PasswordPolicy is the credential policy described by the config.
func (c Config) PasswordPolicy() service.PasswordPolicy {
	return service.PasswordPolicy{
		MinLength:      c.PasswordMinLength,
		RequireUpper:   c.PasswordRequireUpper,
		RequireLower:   c.PasswordRequireLower,
		RequireDigit:   c.PasswordRequireDigit,
		RequireSpecial: c.PasswordRequireSpecial,
	}
}
