package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/NomadCrew/nomad-weather/config"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func validateRequiredEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("ERROR: %s environment variable is not set in your .env file. Please set it and try again", key)
	}
	if len(value) < 8 {
		return "", fmt.Errorf("ERROR: %s value is too short. It must be at least 8 characters long. Current length: %d", key, len(value))
	}
	return value, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment and defaults")
	}

	cfg := config.Config{}

	cfg.Server.Environment = config.Environment(getEnvOrDefault("SERVER_ENVIRONMENT", string(config.EnvDevelopment)))
	cfg.Server.Port = getEnvOrDefault("PORT", "8080")
	cfg.Server.AllowedOrigins = strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "*"), ",")
	cfg.Server.Version = getEnvOrDefault("VERSION", "dev")

	cfg.Weather.Provider = strings.ToLower(getEnvOrDefault("WEATHER_PROVIDER", config.ProviderOpenMeteo))
	if cfg.Weather.Provider == config.ProviderOpenWeatherMap {
		key, err := validateRequiredEnv("OPENWEATHER_API_KEY")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Weather.APIKey = key
	}
	cfg.Weather.UserAgent = getEnvOrDefault("WEATHER_USER_AGENT", "NomadWeather/1.0")
	cfg.Weather.TimeoutSeconds = 10
	cfg.Weather.RequestsPerSecond = 5
	cfg.Weather.Burst = 2

	cfg.Location.Mode = getEnvOrDefault("LOCATION_MODE", config.LocationModeStatic)
	cfg.Location.PermissionGranted = getEnvOrDefault("LOCATION_PERMISSION_GRANTED", "true") == "true"
	cfg.Location.Latitude = getFloatOrDefault("LOCATION_LATITUDE", 51.5074)
	cfg.Location.Longitude = getFloatOrDefault("LOCATION_LONGITUDE", -0.1278)
	cfg.Location.IPLookupURL = getEnvOrDefault("LOCATION_IP_LOOKUP_URL", "http://ip-api.com/json")

	cfg.Redis.Enabled = getEnvOrDefault("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", "redis:6379")
	cfg.Redis.PoolSize = 3

	cfg.RateLimit.ScreenRequestsPerMinute = 30
	cfg.RateLimit.WindowSeconds = 60

	yamlData, err := yaml.Marshal(&cfg)
	if err != nil {
		fmt.Printf("Error marshaling YAML: %v\n", err)
		os.Exit(1)
	}

	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}

	if err := os.MkdirAll("config", 0755); err != nil {
		fmt.Printf("Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	filename := fmt.Sprintf("config/config.%s.yaml", env)
	if err := os.WriteFile(filename, yamlData, 0644); err != nil {
		fmt.Printf("Error writing config file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated %s\n", filename)
	fmt.Printf("Load it with CONFIG_FILE=%s\n", filename)
}
