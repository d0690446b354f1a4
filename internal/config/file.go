// Package config loads the service configuration from a YAML file, the
// environment and a local .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const appName = "polyglot"

// FileConfig is the service configuration.
type FileConfig struct {
	Manifest string      `yaml:"manifest" json:"manifest" env:"POLYGLOT_MANIFEST"`
	Watch    bool        `yaml:"watch" json:"watch" env:"POLYGLOT_WATCH"`
	LogLevel string      `yaml:"log_level,omitempty" json:"log_level,omitempty" env:"POLYGLOT_LOG_LEVEL"`
	HTTP     HTTPConfig  `yaml:"http" json:"http"`
	Kafka    KafkaConfig `yaml:"kafka,omitempty" json:"kafka,omitempty"`
}

// HTTPConfig holds the HTTP listener settings.
type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr" env:"POLYGLOT_HTTP_ADDR"`
}

// KafkaConfig holds connectivity and security settings of the reload event publisher.
// The publisher is disabled when no brokers are configured.
type KafkaConfig struct {
	Brokers           []string    `yaml:"brokers,omitempty" json:"brokers,omitempty" env:"POLYGLOT_KAFKA_BROKERS" envSeparator:","`
	Topic             string      `yaml:"topic,omitempty" json:"topic,omitempty" env:"POLYGLOT_KAFKA_TOPIC"`
	ClientID          string      `yaml:"client_id,omitempty" json:"client_id,omitempty" env:"POLYGLOT_KAFKA_CLIENT_ID"`
	Partitions        int32       `yaml:"partitions,omitempty" json:"partitions,omitempty"`
	ReplicationFactor int16       `yaml:"replication_factor,omitempty" json:"replication_factor,omitempty"`
	TLS               *TLSConfig  `yaml:"tls,omitempty" json:"tls,omitempty"`
	SASL              *SASLConfig `yaml:"sasl,omitempty" json:"sasl,omitempty"`
	AWS               *AWSConfig  `yaml:"aws,omitempty" json:"aws,omitempty"`
}

// TLSConfig holds TLS related fields.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	CAFile             string `yaml:"ca_file,omitempty" json:"ca_file,omitempty"`
	CertFile           string `yaml:"cert_file,omitempty" json:"cert_file,omitempty"`
	KeyFile            string `yaml:"key_file,omitempty" json:"key_file,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty" json:"insecure_skip_verify,omitempty"`
}

// SASLConfig holds SASL configuration. Credentials may be provided inline or via env var names.
type SASLConfig struct {
	Mechanism   string `yaml:"mechanism,omitempty" json:"mechanism,omitempty"` // PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	Username    string `yaml:"username,omitempty" json:"username,omitempty"`
	Password    string `yaml:"password,omitempty" json:"password,omitempty"`
	UsernameEnv string `yaml:"username_env,omitempty" json:"username_env,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty" json:"password_env,omitempty"`
}

// AWSConfig holds AWS IAM SASL config. Falls back to the standard AWS_* variables.
type AWSConfig struct {
	IAM             bool   `yaml:"iam,omitempty" json:"iam,omitempty"`
	Region          string `yaml:"region,omitempty" json:"region,omitempty"`
	AccessKeyEnv    string `yaml:"access_key_env,omitempty" json:"access_key_env,omitempty"`
	SecretKeyEnv    string `yaml:"secret_key_env,omitempty" json:"secret_key_env,omitempty"`
	SessionTokenEnv string `yaml:"session_token_env,omitempty" json:"session_token_env,omitempty"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() FileConfig {
	return FileConfig{
		Manifest: "language.json",
		Watch:    true,
		HTTP:     HTTPConfig{Addr: ":8080"},
		Kafka: KafkaConfig{
			Topic:             "polyglot.reloads",
			ClientID:          appName,
			Partitions:        1,
			ReplicationFactor: 1,
		},
	}
}

// ReadConfig reads a YAML config file on top of Defaults.
func ReadConfig(path string) (FileConfig, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// WriteConfig writes cfg as YAML.
func WriteConfig(path string, cfg FileConfig) error {
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Load builds the effective configuration: Defaults, then the YAML file at
// path when it exists, then environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := Defaults()
	if path != "" {
		fileCfg, err := ReadConfig(path)
		switch {
		case err == nil:
			cfg = fileCfg
		case errors.Is(err, fs.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ParseEnv applies environment overrides to target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports missing required settings.
func (c FileConfig) Validate() error {
	var errs []error
	if c.Manifest == "" {
		errs = append(errs, errors.New("manifest path is required"))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http addr is required"))
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}

// Enabled reports whether reload events should be published.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// GetAuthType returns a human-readable authentication type for the Kafka connection
func (k *KafkaConfig) GetAuthType() string {
	if k.AWS != nil && k.AWS.IAM {
		return "AWS IAM"
	}

	if k.SASL != nil && k.SASL.Mechanism != "" {
		if k.TLS != nil && k.TLS.Enabled {
			return "SASL/" + k.SASL.Mechanism + " + TLS"
		}
		return "SASL/" + k.SASL.Mechanism
	}

	if k.TLS != nil && k.TLS.Enabled {
		if k.TLS.CertFile != "" && k.TLS.KeyFile != "" {
			return "mTLS"
		}
		return "TLS"
	}

	return "PLAINTEXT"
}

// FindConfigPath returns the first existing config file among the usual
// locations, or "" when there is none. POLYGLOT_CONFIG wins when set.
func FindConfigPath() string {
	if p := os.Getenv("POLYGLOT_CONFIG"); p != "" {
		return p
	}

	for _, p := range configCandidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func configCandidates() []string {
	names := []string{appName + ".yml", appName + ".yaml"}
	var dirs []string

	dirs = append(dirs, ".")
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "windows" {
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			dirs = append(dirs, filepath.Join(appdata, appName))
		}
		if pd := os.Getenv("PROGRAMDATA"); pd != "" {
			dirs = append(dirs, filepath.Join(pd, appName))
		}
	} else {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dirs = append(dirs, filepath.Join(xdg, appName))
		}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".config", appName))
		}
		dirs = append(dirs, filepath.Join("/etc", appName))
	}

	candidates := make([]string, 0, len(dirs)*len(names))
	for _, d := range dirs {
		for _, n := range names {
			candidates = append(candidates, filepath.Join(d, n))
		}
	}
	return candidates
}
