package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

const (
	DefaultRosterTimeout = 60 * time.Second
	DefaultBasePath      = "/api"
	DefaultDocsPath      = "/docs"
)

// Config holds all configuration details
type Config struct {
	Host     string         `yaml:"host"`
	BasePath string         `yaml:"basePath"`
	DocsPath string         `yaml:"docsPath"`
	Database DatabaseConfig `yaml:"database"`
	Roster   RosterConfig   `yaml:"roster"`
	Sync     SyncConfig     `yaml:"sync"`
	Groups   GroupsConfig   `yaml:"groups"`
	Email    EmailConfig    `yaml:"email"`
	Pulsar   PulsarConfig   `yaml:"pulsar"`
	AWS      AWSConfig      `yaml:"aws"`
}

// DatabaseConfig defines the database connection details
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

// RosterConfig defines how the identity service roster is reached
type RosterConfig struct {
	URL   string `yaml:"url"`
	Login string `yaml:"login"`
	Token string `yaml:"token"`

	// TokenSecretName, when set, names an AWS Secrets Manager secret holding the token.
	TokenSecretName string        `yaml:"tokenSecretName"`
	Timeout         time.Duration `yaml:"timeout"`
}

// SyncConfig defines which roster users are synchronised and where they are linked
type SyncConfig struct {
	AllowedDomains []string `yaml:"allowedDomains"`
	LinkageGroup   string   `yaml:"linkageGroup"`
	SkipMalformed  bool     `yaml:"skipMalformed"`
}

// GroupsConfig lists the groups that must exist at start-up
type GroupsConfig struct {
	Custom []string `yaml:"custom"`
}

// EmailConfig defines the sender and recipients of administrator notifications
type EmailConfig struct {
	Sender         string   `yaml:"sender"`
	Administrators []string `yaml:"administrators"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL           string `yaml:"url"`
	TopicProducer string `yaml:"topicProducer"`
	TopicConsumer string `yaml:"topicConsumer"`
	Subscription  string `yaml:"subscription"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

// LoadConfig loads and parses the configuration from a given file path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		err := errors.New("config file path is required")
		log.Error().Err(err).Msg("config file not provided")
		return nil, err
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		log.Error().Err(err).Msg("error parsing config file template")
		return nil, fmt.Errorf("error parsing config file template: %w", err)
	}

	// Missing environment variables render as empty strings
	tmpl.Option("missingkey=zero")

	// Execute the template with environment variables
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, loadEnvVars()); err != nil {
		log.Error().Err(err).Msg("error executing config file template")
		return nil, fmt.Errorf("error executing config file template: %w", err)
	}

	// Load and unmarshal the YAML
	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config YAML")
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

// NormalizedDomains returns the allowed domains lower-cased, trimmed and without a leading '@'.
func (s SyncConfig) NormalizedDomains() []string {
	domains := make([]string, 0, len(s.AllowedDomains))
	for _, d := range s.AllowedDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}

func (c *Config) applyDefaults() {
	if c.Roster.Timeout <= 0 {
		c.Roster.Timeout = DefaultRosterTimeout
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.DocsPath == "" {
		c.DocsPath = DefaultDocsPath
	}
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
