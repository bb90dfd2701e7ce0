package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "CLOUDSLATE_CONFIG"

// Config is shared by the API server, the sitemap worker and the CLI. Values
// come from defaults, then the optional YAML file named by CLOUDSLATE_CONFIG,
// then environment variables.
type Config struct {
	Port       string `yaml:"port"`
	AdminToken string `yaml:"adminToken"`
	LogLevel   string `yaml:"logLevel"`
	LogFormat  string `yaml:"logFormat"`

	// KVBackend is one of memory, file, s3, postgres, redis.
	KVBackend     string `yaml:"kvBackend"`
	KVDir         string `yaml:"kvDir"`
	DatabaseURL   string `yaml:"databaseUrl"`
	S3Bucket      string `yaml:"s3Bucket"`
	AWSRegion     string `yaml:"awsRegion"`
	S3Endpoint    string `yaml:"s3Endpoint"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RabbitMQURL   string `yaml:"rabbitmqUrl"`

	Client ClientConfig `yaml:"client"`
	Sanity SanityConfig `yaml:"sanity"`
}

// ClientConfig drives the read resolver and the write path.
type ClientConfig struct {
	APIURL       string        `yaml:"apiUrl"`
	APIToken     string        `yaml:"apiToken"`
	LocalDir     string        `yaml:"localDir"`
	APICacheTTL  time.Duration `yaml:"apiCacheTtl"`
	CMSCacheTTL  time.Duration `yaml:"cmsCacheTtl"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	SiteURL      string        `yaml:"siteUrl"`
}

type SanityConfig struct {
	ProjectID  string `yaml:"projectId"`
	Dataset    string `yaml:"dataset"`
	APIVersion string `yaml:"apiVersion"`
	UseCDN     bool   `yaml:"useCdn"`
}

// Enabled reports whether a CMS project is configured.
func (s SanityConfig) Enabled() bool {
	return s.ProjectID != ""
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Default().Warn("loading .env failed", "error", err)
	}

	cfg := defaults()
	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			slog.Default().Warn("loading config file failed, using defaults", "path", path, "error", err)
		}
	}
	cfg.applyEnv()
	return cfg
}

func defaults() *Config {
	return &Config{
		Port:      "8080",
		LogLevel:  "info",
		LogFormat: "json",
		KVBackend: "memory",
		KVDir:     "data",
		AWSRegion: "us-east-1",
		Client: ClientConfig{
			APIURL:       "http://localhost:8080",
			LocalDir:     ".cloudslate",
			APICacheTTL:  time.Minute,
			CMSCacheTTL:  5 * time.Minute,
			FetchTimeout: 10 * time.Second,
			SiteURL:      "https://cloudslate.com",
		},
		Sanity: SanityConfig{
			Dataset:    "production",
			APIVersion: "2024-01-01",
			UseCDN:     true,
		},
	}
}

// loadFile overlays the YAML file at path. Keys absent from the file keep
// their current values.
func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	next := *c
	if err := yaml.Unmarshal(raw, &next); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.AdminToken = getEnv("ADMIN_TOKEN", c.AdminToken)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.KVBackend = getEnv("KV_BACKEND", c.KVBackend)
	c.KVDir = getEnv("KV_DIR", c.KVDir)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.S3Endpoint = getEnv("S3_ENDPOINT", c.S3Endpoint)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RabbitMQURL = getEnv("RABBITMQ_URL", c.RabbitMQURL)

	c.Client.APIURL = getEnv("API_URL", c.Client.APIURL)
	c.Client.APIToken = getEnv("API_TOKEN", c.Client.APIToken)
	c.Client.LocalDir = getEnv("LOCAL_DIR", c.Client.LocalDir)
	c.Client.APICacheTTL = getEnvDuration("API_CACHE_TTL", c.Client.APICacheTTL)
	c.Client.CMSCacheTTL = getEnvDuration("CMS_CACHE_TTL", c.Client.CMSCacheTTL)
	c.Client.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", c.Client.FetchTimeout)
	c.Client.SiteURL = getEnv("SITE_URL", c.Client.SiteURL)

	c.Sanity.ProjectID = getEnv("SANITY_PROJECT_ID", c.Sanity.ProjectID)
	c.Sanity.Dataset = getEnv("SANITY_DATASET", c.Sanity.Dataset)
	c.Sanity.APIVersion = getEnv("SANITY_API_VERSION", c.Sanity.APIVersion)
	c.Sanity.UseCDN = getEnvBool("SANITY_USE_CDN", c.Sanity.UseCDN)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Default().Warn("invalid duration in environment", "key", key, "value", value)
		return fallback
	}
	return d
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Default().Warn("invalid boolean in environment", "key", key, "value", value)
		return fallback
	}
	return b
}
