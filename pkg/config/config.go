package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	FirebaseProject   string
	StorageBucket     string
	Environment       string
	WebhookSecret     string
	DevTokenSecret    string
	StoryTTLHours     int64
	StorySweepHourUTC int64
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		FirebaseProject:   getEnv("FIREBASE_PROJECT_ID", ""),
		StorageBucket:     getEnv("STORAGE_BUCKET", ""),
		Environment:       getEnv("ENVIRONMENT", "development"),
		WebhookSecret:     getEnv("IDENTITY_WEBHOOK_SECRET", ""),
		DevTokenSecret:    getEnv("DEV_TOKEN_SECRET", "dev-secret"),
		StoryTTLHours:     getEnvAsInt64("STORY_TTL_HOURS", 24),
		StorySweepHourUTC: getEnvAsInt64("STORY_SWEEP_HOUR_UTC", 0),
	}

	return config, nil
}

// StoryTTL is how long a story stays visible after posting.
func (c *Config) StoryTTL() time.Duration {
	return time.Duration(c.StoryTTLHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
