package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	Functions FunctionsConfig
	Chat      ChatConfig
	Timeout   TimeoutConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// FunctionsConfig holds serverless-functions client configuration
type FunctionsConfig struct {
	BaseURL       string
	MockFunctions bool
}

// ChatConfig holds chat behavior configuration
type ChatConfig struct {
	// DedupeWindow is how close a confirmed message's server timestamp must
	// be to an optimistic message's local timestamp for the two to be
	// treated as the same message.
	DedupeWindow time.Duration
	// FailedMessageTTL is how long a failed optimistic message stays
	// visible before auto-removal. Zero disables auto-removal.
	FailedMessageTTL time.Duration
}

// TimeoutConfig holds volunteer-assignment timeout configuration
type TimeoutConfig struct {
	PollInterval time.Duration
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017/?replicaSet=rs0")
	viper.SetDefault("MongoDB.Database", "foodshare")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Functions.BaseURL", "http://localhost:5001/functions")
	viper.SetDefault("Functions.MockFunctions", true)
	viper.SetDefault("Chat.DedupeWindow", 5*time.Second)
	viper.SetDefault("Chat.FailedMessageTTL", 10*time.Second)
	viper.SetDefault("Timeout.PollInterval", 60*time.Second)
	viper.SetDefault("LogLevel", "info")
}
