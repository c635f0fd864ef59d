// Package config provides functionality for managing configuration options
// for the wardrobe server using command-line flags, a JSON file and
// environment variables (in increasing priority).
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// WeatherAPIKey is the weatherapi.com key used by recommendations.
	WeatherAPIKey string `json:"weather_api_key"`

	// WeatherBaseURL overrides the weather provider endpoint.
	WeatherBaseURL string `json:"weather_base_url"`

	// WeatherTTL is how long a city's weather stays cached.
	WeatherTTL time.Duration `json:"-"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// TLSEnabled reports whether a certificate pair is configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// Parse parses the command-line flags, the JSON config file and environment
// variables. It exits the process on a malformed config file.
func Parse() *Options {
	opts, err := parse(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return opts
}

func parse(fs *flag.FlagSet, args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.WeatherAPIKey, "weather-key", "", "weatherapi.com API key")
	fs.StringVar(&options.WeatherBaseURL, "weather-url", "https://api.weatherapi.com/v1", "weather provider base URL")
	fs.DurationVar(&options.WeatherTTL, "weather-ttl", 10*time.Minute, "weather cache TTL")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to server TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to server TLS key")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	env := map[string]*string{
		"SERVER_ADDRESS":   &options.Port,
		"DATABASE_DSN":     &options.DatabaseDSN,
		"WEATHER_API_KEY":  &options.WeatherAPIKey,
		"WEATHER_BASE_URL": &options.WeatherBaseURL,
		"TLS_CERT":         &options.TLSCert,
		"TLS_KEY":          &options.TLSKey,
		"LOG_LEVEL":        &options.LogLevel,
	}
	for name, dst := range env {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	if options.WeatherTTL <= 0 {
		return nil, fmt.Errorf("weather TTL must be positive, got %s", options.WeatherTTL)
	}

	return options, nil
}
