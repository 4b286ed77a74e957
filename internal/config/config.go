package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// OAuth client registered with the upstream bank
	ClientID     string
	ClientSecret string
	// ClientHost is the externally reachable base URL of this app, used to
	// build the OAuth redirect URI.
	ClientHost string

	// Upstream hosts (overridable for tests and staging)
	APIURL  string
	AuthURL string

	// Session persistence
	SessionDBPath string

	// AMQP (optional; publisher disabled when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		ClientID:     getEnv("MONZO_CLIENT_ID", ""),
		ClientSecret: getEnv("MONZO_CLIENT_SECRET", ""),
		ClientHost:   getEnv("CLIENT_HOST", "http://localhost:8080"),

		APIURL:  getEnv("MONZO_API_URL", "https://api.monzo.com"),
		AuthURL: getEnv("MONZO_AUTH_URL", "https://auth.monzo.com"),

		SessionDBPath: getEnv("SESSION_DB_PATH", "./data/mondash.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "mondash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_refresh"),
	}
}

// RedirectURL is the OAuth callback this app registers upstream.
func (c *Config) RedirectURL() string {
	return strings.TrimRight(c.ClientHost, "/") + "/callback"
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ClientID == "" {
		errs = append(errs, "MONZO_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		errs = append(errs, "MONZO_CLIENT_SECRET is required")
	}

	for _, host := range []struct{ name, value string }{
		{"CLIENT_HOST", c.ClientHost},
		{"MONZO_API_URL", c.APIURL},
		{"MONZO_AUTH_URL", c.AuthURL},
	} {
		u, err := url.Parse(host.value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("invalid %s '%s': must be an absolute URL", host.name, host.value))
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid %s scheme '%s': must be 'http' or 'https'", host.name, u.Scheme))
		}
	}

	if c.SessionDBPath == "" {
		errs = append(errs, "session database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
