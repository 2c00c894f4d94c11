package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql (default) or postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint      string `yaml:"endpoint"`
		AccessKey     string `yaml:"accessKey"`
		SecretKey     string `yaml:"secretKey"`
		BucketName    string `yaml:"bucketName"`
		Region        string `yaml:"region"`
		UseSSL        bool   `yaml:"useSSL"`
		PublicBaseURL string `yaml:"publicBaseUrl"`
		UploadExpiry  int    `yaml:"uploadExpiryMinutes"`
	} `yaml:"minio"`

	AI struct {
		Provider            string `yaml:"provider"` // gemini (default) or openai
		APIKey              string `yaml:"apiKey"`
		ScoutModel          string `yaml:"scoutModel"`
		SniperModel         string `yaml:"sniperModel"`
		ConfidenceThreshold int    `yaml:"confidenceThreshold"`
		TimeoutSeconds      int    `yaml:"timeoutSeconds"`
	} `yaml:"ai"`
}

// Load reads the yaml config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.AI.APIKey == "" {
		// Keys stay out of config files in most deployments.
		switch c.AI.Provider {
		case "openai":
			c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if c.AI.ScoutModel == "" {
		if c.AI.Provider == "openai" {
			c.AI.ScoutModel = "gpt-4o-mini"
		} else {
			c.AI.ScoutModel = "gemini-2.5-flash"
		}
	}
	if c.AI.SniperModel == "" {
		if c.AI.Provider == "openai" {
			c.AI.SniperModel = "gpt-4o"
		} else {
			c.AI.SniperModel = "gemini-2.5-pro"
		}
	}
	if c.AI.ConfidenceThreshold == 0 {
		c.AI.ConfidenceThreshold = 85
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 120
	}
	if c.Minio.UploadExpiry == 0 {
		c.Minio.UploadExpiry = 15
	}
}

// MySQLDSN builds the DSN for the mysql driver
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the DSN for the lib/pq driver
func (c *Config) PostgresDSN() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		sslMode,
	)
}

// Validate catches configuration mistakes before any client dials out.
func (c *Config) Validate() error {
	var missing []string
	if c.Minio.Endpoint == "" {
		missing = append(missing, "minio.endpoint")
	}
	if c.Minio.BucketName == "" {
		missing = append(missing, "minio.bucketName")
	}
	if c.AI.APIKey == "" {
		missing = append(missing, "ai.apiKey")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing config: %s", strings.Join(missing, ", "))
	}
	if c.AI.Provider != "gemini" && c.AI.Provider != "openai" {
		return fmt.Errorf("unknown ai provider: %s", c.AI.Provider)
	}
	if c.Database.Driver != "mysql" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unknown database driver: %s", c.Database.Driver)
	}
	return nil
}
