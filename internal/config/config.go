package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application level configuration loaded from environment variables.
// An optional YAML file named by MELLOW_CONFIG provides base values; environment
// variables override it.
type Config struct {
	ServerPort  string `yaml:"server_port"`
	DBDriver    string `yaml:"db_driver"`
	MySQLDSN    string `yaml:"mysql_dsn"`
	SQLitePath  string `yaml:"sqlite_path"`
	ResetDB     bool   `yaml:"reset_db"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`
	RedisPass   string `yaml:"redis_password"`
	JWTSecret   string `yaml:"jwt_secret"`
	BcryptCost  int    `yaml:"bcrypt_cost"`
	DealsFile   string `yaml:"deals_file"`
	SwaggerHost string `yaml:"swagger_host"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`

	S3 S3Config `yaml:"s3"`
}

// S3Config configures access to the object store holding raw datasets.
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		ServerPort: "3001",
		DBDriver:   "mysql",
		MySQLDSN:   "user:password@tcp(localhost:3306)/mellow?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		SQLitePath: "var/mellow.db",
		RedisAddr:  "localhost:6379",
		JWTSecret:  "change-me",
		BcryptCost: 10,
		DealsFile:  "data/filtered_businesses.json",
		LogLevel:   "info",
		LogFormat:  "json",
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

// Load builds Config from defaults, the optional MELLOW_CONFIG file and the environment.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("MELLOW_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.DealsFile == "" {
		return fmt.Errorf("DEALS_FILE must not be empty")
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.MySQLDSN = getEnv("MYSQL_DSN", c.MySQLDSN)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.ResetDB = getEnvBool("RESET_DB", c.ResetDB)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPass = getEnv("REDIS_PASSWORD", c.RedisPass)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.BcryptCost = getEnvInt("BCRYPT_COST", c.BcryptCost)
	c.DealsFile = getEnv("DEALS_FILE", c.DealsFile)
	c.SwaggerHost = getEnv("SWAGGER_HOST", c.SwaggerHost)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.S3.Region = getEnv("S3_REGION", c.S3.Region)
	c.S3.Endpoint = getEnv("S3_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKey = getEnv("S3_ACCESS_KEY", c.S3.AccessKey)
	c.S3.SecretKey = getEnv("S3_SECRET_KEY", c.S3.SecretKey)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
