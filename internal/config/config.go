package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Admin   AdminConfig   `mapstructure:"admin"`
	AI      AIConfig      `mapstructure:"ai"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig selects and configures the key-value persistence backend.
// Driver is one of: sqlite, mongo, s3, memory.
type StorageConfig struct {
	Driver     string      `mapstructure:"driver"`
	SQLitePath string      `mapstructure:"sqlite_path"`
	Mongo      MongoConfig `mapstructure:"mongo"`
	S3         S3Config    `mapstructure:"s3"`
}

type MongoConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AdminConfig carries the injected back-office credential. PasswordHash is a
// bcrypt hash; the admin login never sees a compiled-in constant.
type AdminConfig struct {
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"`
}

// AIConfig seeds the provider credential set. Values saved at runtime through
// the session settings endpoint override these.
type AIConfig struct {
	Provider         string `mapstructure:"provider"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey     string `mapstructure:"openai_api_key"`
	GroqAPIKey       string `mapstructure:"groq_api_key"`
	CustomAPIKey     string `mapstructure:"custom_api_key"`
	CustomAPIBaseURL string `mapstructure:"custom_api_base_url"`
	CustomAPIModel   string `mapstructure:"custom_api_model"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Env overrides, e.g. storage.driver -> STORAGE_DRIVER
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.sqlite_path", "physioconnect.db")
	viper.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("storage.mongo.name", "physioconnect")
	viper.SetDefault("storage.s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("ai.provider", "gemini")

	err = viper.ReadInConfig()
	// A missing config file is fine; env vars and defaults carry the rest.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
