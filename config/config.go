package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from a .env file and config.yaml.
// Load order:
// 1. .env file (environment variables: BOT_TOKEN, DATABASE_PATH)
// 2. config.yaml (bot settings: scheduler tick, admin log channel, ops listener)
// Environment variables override file values.
func LoadConfig() {
	// 1. Load environment variables from .env, ignore a missing file.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, skipping.")
	}

	// 2. Read the base config file (config.yaml).
	viper.SetConfigName("config")                          // config file name (no extension)
	viper.SetConfigType("yaml")                            // config file type
	viper.AddConfigPath(".")                               // look in the working directory
	viper.AutomaticEnv()                                   // read matching environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map config keys to env var names

	viper.SetDefault("database.path", "data/forumguard.sqlite3")
	viper.SetDefault("bot.escalationTick", "@every 10m")
	viper.SetDefault("bot.sweepAtStartup", true)
	viper.SetDefault("grpc.healthAddr", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// A missing config file is fine; environment variables and
			// defaults carry the configuration.
			log.Printf("No config.yaml found, using environment variables and defaults.")
		} else {
			panic(fmt.Errorf("fatal error reading config file: %w", err))
		}
	}
}
