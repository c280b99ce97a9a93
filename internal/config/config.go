// Package config reads process settings from the environment (and an
// optional .env file) for the server and the driver agent.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	LiveStoreRedis  = "redis"
	LiveStoreMemory = "memory"

	ProfilePostgres  = "postgres"
	ProfileFirestore = "firestore"
	ProfileMemory    = "memory"
)

// Config holds the server settings.
type Config struct {
	Port                string
	DatabaseURL         string
	RedisURL            string
	LiveStoreBackend    string
	ProfileBackend      string
	JWTSecret           string
	FirebaseCredsBase64 string
	FirebaseCredsFile   string
	GoogleMapsAPIKey    string
}

// AgentConfig holds the driver agent settings.
type AgentConfig struct {
	APIURL               string
	Token                string // bearer token of an earlier session, restored on start
	Email                string
	Password             string
	Register             bool
	FullName             string
	Waypoints            string
	LocationPermission   bool
	LiveStoreBackend     string
	RedisURL             string
	LocationPushInterval time.Duration
	AuthInitTimeout      time.Duration
}

// LoadEnv reads .env into the process environment if the file exists.
func LoadEnv() {
	log.Println("📂 Loading environment variables...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
		return
	}
	log.Println("✅ .env file loaded successfully")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("LIVESTORE_BACKEND", LiveStoreRedis)
	return v
}

// Load builds the server configuration.
func Load() (*Config, error) {
	v := newViper()
	v.SetDefault("PROFILE_BACKEND", ProfilePostgres)
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "./firebase-service-account.json")

	cfg := &Config{
		Port:                v.GetString("PORT"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		LiveStoreBackend:    strings.ToLower(v.GetString("LIVESTORE_BACKEND")),
		ProfileBackend:      strings.ToLower(v.GetString("PROFILE_BACKEND")),
		JWTSecret:           v.GetString("APP_JWT_SECRET"),
		FirebaseCredsBase64: v.GetString("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredsFile:   v.GetString("FIREBASE_CREDENTIALS_FILE"),
		GoogleMapsAPIKey:    v.GetString("GOOGLE_MAPS_API_KEY"),
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("APP_JWT_SECRET environment variable is required")
	}
	if err := checkBackend("LIVESTORE_BACKEND", c.LiveStoreBackend, LiveStoreRedis, LiveStoreMemory); err != nil {
		return err
	}
	return checkBackend("PROFILE_BACKEND", c.ProfileBackend, ProfilePostgres, ProfileFirestore, ProfileMemory)
}

// LoadAgent builds the driver agent configuration.
func LoadAgent() (*AgentConfig, error) {
	v := newViper()
	v.SetDefault("AGENT_API_URL", "http://localhost:8080")
	v.SetDefault("AGENT_LOCATION_PERMISSION", true)
	v.SetDefault("LOCATION_PUSH_INTERVAL", "7s")
	v.SetDefault("AUTH_INIT_TIMEOUT", "10s")

	cfg := &AgentConfig{
		APIURL:               strings.TrimRight(v.GetString("AGENT_API_URL"), "/"),
		Token:                v.GetString("AGENT_TOKEN"),
		Email:                v.GetString("AGENT_EMAIL"),
		Password:             v.GetString("AGENT_PASSWORD"),
		Register:             v.GetBool("AGENT_REGISTER"),
		FullName:             v.GetString("AGENT_FULL_NAME"),
		Waypoints:            v.GetString("AGENT_WAYPOINTS"),
		LocationPermission:   v.GetBool("AGENT_LOCATION_PERMISSION"),
		LiveStoreBackend:     strings.ToLower(v.GetString("LIVESTORE_BACKEND")),
		RedisURL:             v.GetString("REDIS_URL"),
		LocationPushInterval: v.GetDuration("LOCATION_PUSH_INTERVAL"),
		AuthInitTimeout:      v.GetDuration("AUTH_INIT_TIMEOUT"),
	}
	if err := checkBackend("LIVESTORE_BACKEND", cfg.LiveStoreBackend, LiveStoreRedis, LiveStoreMemory); err != nil {
		return nil, err
	}
	return cfg, nil
}

func checkBackend(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}
