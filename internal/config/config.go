package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	ForcedAligner ForcedAlignerConfig `yaml:"forced_aligner"`
}

// ServerConfig represents the server configuration
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORS         CORSConfig    `yaml:"cors"`
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ForcedAlignerConfig describes how to reach the forced-alignment MCP
// backend that supplies HARDY's word-level timing sequence.
type ForcedAlignerConfig struct {
	MCPURL    string        `yaml:"mcp_url"`
	AuthToken string        `yaml:"auth_token"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheSize int           `yaml:"cache_size"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8001,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:3000"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"*"},
			},
		},
		Logging: LoggingConfig{
			Level:  "debug",
			Format: "json",
		},
		ForcedAligner: ForcedAlignerConfig{
			MCPURL:    "",
			Timeout:   60 * time.Second,
			CacheSize: 100,
		},
	}
}

// LoadConfig loads configuration from environment variables and .env files
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	localEnvPath := ".env"
	if _, err := os.Stat(localEnvPath); err == nil {
		if err := godotenv.Load(localEnvPath); err != nil {
			logrus.Warnf("Failed to load .env file from %s: %v", localEnvPath, err)
		} else {
			logrus.Infof("Successfully loaded environment variables from %s", localEnvPath)
		}
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if url := os.Getenv("FORCED_ALIGNER_MCP_URL"); url != "" {
		cfg.ForcedAligner.MCPURL = url
	}

	if token := os.Getenv("FORCED_ALIGNER_MCP_TOKEN"); token != "" {
		cfg.ForcedAligner.AuthToken = token
	}

	if timeout := os.Getenv("FORCED_ALIGNER_TIMEOUT_SECONDS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			cfg.ForcedAligner.Timeout = time.Duration(secs) * time.Second
		}
	}

	if cacheSize := os.Getenv("FORCED_ALIGNER_CACHE_SIZE"); cacheSize != "" {
		if n, err := strconv.Atoi(cacheSize); err == nil {
			cfg.ForcedAligner.CacheSize = n
		}
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		var parsed []string
		for _, o := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				parsed = append(parsed, trimmed)
			}
		}
		if len(parsed) > 0 {
			cfg.Server.CORS.AllowedOrigins = parsed
		}
	}

	return cfg, nil
}

// SetupLogging configures the logging system
func SetupLogging(cfg *LoggingConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	switch cfg.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	return nil
}
