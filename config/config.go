// Package config loads and validates the application configuration from a
// YAML file. The configuration is constructed once at process start and
// passed into the components that need it; there is no process-wide mutable
// state.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config represents the entire application configuration.
type Config struct {
	DatabasePath     string          `yaml:"database_path"`
	SyncStartDateStr string          `yaml:"sync_start_date"`
	Auth             AuthConfig      `yaml:"auth"`
	Endpoints        EndpointsConfig `yaml:"endpoints"`
	SyncStartDate    time.Time       // Parsed from SyncStartDateStr
}

// AuthConfig holds the authentication service settings. IdentityID is
// optional; when empty the first identity returned by the service is used.
type AuthConfig struct {
	URL           string `yaml:"url"`
	ApplicationID string `yaml:"application_id"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	IdentityID    string `yaml:"identity_id"`
}

// EndpointsConfig holds one service URL per entity type. Every entry is
// optional: an entity type with no configured URL is skipped by the sync
// run, not treated as an error.
type EndpointsConfig struct {
	Company     string `yaml:"company"`
	Person      string `yaml:"person"`
	Invoice     string `yaml:"invoice"`
	Product     string `yaml:"product"`
	Transaction string `yaml:"transaction"`
	Account     string `yaml:"account"`
}

// defaultAuthURL is used when auth.url is not configured.
const defaultAuthURL = "https://api.24sevenoffice.com/authenticate/v001/authenticate.asmx"

// Load loads and validates the configuration from the given file path.
func Load(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", filePath)
	}

	configFile, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(configFile, &cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse YAML config file: %w", err)
	}

	if err := validateAndPrepare(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateAndPrepare checks for required fields and sets up derived values.
func validateAndPrepare(c *Config) error {
	// General
	if c.DatabasePath == "" {
		return errors.New("database_path is missing")
	}
	if c.SyncStartDateStr == "" {
		return errors.New("sync_start_date is missing")
	}
	parsedDate, err := time.Parse("2006-01-02", c.SyncStartDateStr)
	if err != nil {
		return fmt.Errorf("invalid sync_start_date format: %w", err)
	}
	c.SyncStartDate = parsedDate

	// Auth
	ac := &c.Auth
	if ac.URL == "" {
		ac.URL = defaultAuthURL
	}
	if ac.ApplicationID == "" {
		return errors.New("auth.application_id is missing")
	}
	if ac.Username == "" {
		return errors.New("auth.username is missing")
	}
	if ac.Password == "" {
		return errors.New("auth.password is missing")
	}

	// Endpoint URLs are often pasted with a trailing ?singleWsdl query
	// which the services reject on POST.
	ac.URL = stripQuery(ac.URL)
	ec := &c.Endpoints
	ec.Company = stripQuery(ec.Company)
	ec.Person = stripQuery(ec.Person)
	ec.Invoice = stripQuery(ec.Invoice)
	ec.Product = stripQuery(ec.Product)
	ec.Transaction = stripQuery(ec.Transaction)
	ec.Account = stripQuery(ec.Account)

	return nil
}

// stripQuery removes any query component from an endpoint URL.
func stripQuery(u string) string {
	if i := strings.Index(u, "?"); i >= 0 {
		return u[:i]
	}
	return u
}
