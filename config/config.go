// Package config handles loading and validation of application configuration
// from environment variables and an optional YAML configuration file.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/pkg/valueobjects"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Weather providers.
const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderOpenMeteo      = "openmeteo"
)

// Location sources.
const (
	LocationModeStatic = "static"
	LocationModeIP     = "ip"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// TrustedProxies is a list of CIDR ranges or IPs of trusted reverse proxies.
	// If empty, X-Forwarded-For headers are ignored.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// WeatherConfig selects and tunes the upstream weather provider.
type WeatherConfig struct {
	Provider string `mapstructure:"PROVIDER" yaml:"provider"`
	APIKey   string `mapstructure:"API_KEY" yaml:"api_key"`
	// BaseURL overrides the provider's API root. Empty uses the public endpoint.
	BaseURL string `mapstructure:"BASE_URL" yaml:"base_url"`
	// GeocodingURL and NominatimURL are only used by the Open-Meteo provider.
	GeocodingURL      string  `mapstructure:"GEOCODING_URL" yaml:"geocoding_url"`
	NominatimURL      string  `mapstructure:"NOMINATIM_URL" yaml:"nominatim_url"`
	UserAgent         string  `mapstructure:"USER_AGENT" yaml:"user_agent"`
	TimeoutSeconds    int     `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"REQUESTS_PER_SECOND" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"BURST" yaml:"burst"`
}

// LocationConfig describes where the device position comes from.
type LocationConfig struct {
	Mode string `mapstructure:"MODE" yaml:"mode"`
	// PermissionGranted is the answer the static locator gives to the
	// permission prompt.
	PermissionGranted bool    `mapstructure:"PERMISSION_GRANTED" yaml:"permission_granted"`
	Latitude          float64 `mapstructure:"LATITUDE" yaml:"latitude"`
	Longitude         float64 `mapstructure:"LONGITUDE" yaml:"longitude"`
	IPLookupURL       string  `mapstructure:"IP_LOOKUP_URL" yaml:"ip_lookup_url"`
}

// RedisConfig holds Redis connection details. Redis only backs the
// inbound rate limiter and is optional.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
}

// RateLimitConfig holds configuration for inbound rate limiting.
type RateLimitConfig struct {
	// Maximum screen actions (search, refresh, retry, toggle) per client per window
	ScreenRequestsPerMinute int `mapstructure:"SCREEN_REQUESTS_PER_MINUTE" yaml:"screen_requests_per_minute"`
	// Window duration in seconds for rate limiting
	WindowSeconds int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER" yaml:"server"`
	Weather   WeatherConfig   `mapstructure:"WEATHER" yaml:"weather"`
	Location  LocationConfig  `mapstructure:"LOCATION" yaml:"location"`
	Redis     RedisConfig     `mapstructure:"REDIS" yaml:"redis"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("WEATHER.PROVIDER", ProviderOpenMeteo)
	v.SetDefault("WEATHER.API_KEY", "")
	v.SetDefault("WEATHER.BASE_URL", "")
	v.SetDefault("WEATHER.GEOCODING_URL", "")
	v.SetDefault("WEATHER.NOMINATIM_URL", "")
	v.SetDefault("WEATHER.USER_AGENT", "NomadWeather/1.0")
	v.SetDefault("WEATHER.TIMEOUT_SECONDS", 10)
	v.SetDefault("WEATHER.REQUESTS_PER_SECOND", 5.0)
	v.SetDefault("WEATHER.BURST", 2)
	v.SetDefault("LOCATION.MODE", LocationModeStatic)
	v.SetDefault("LOCATION.PERMISSION_GRANTED", true)
	// Central London
	v.SetDefault("LOCATION.LATITUDE", 51.5074)
	v.SetDefault("LOCATION.LONGITUDE", -0.1278)
	v.SetDefault("LOCATION.IP_LOOKUP_URL", "http://ip-api.com/json")
	v.SetDefault("REDIS.ENABLED", false)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("RATE_LIMIT.SCREEN_REQUESTS_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
}

// LoadConfig loads configuration using Viper: defaults first, then the YAML
// file named by CONFIG_FILE if set, then environment variables. The result
// is unmarshalled and validated.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
		// Weather config
		{"WEATHER.PROVIDER", "WEATHER_PROVIDER"},
		{"WEATHER.API_KEY", "OPENWEATHER_API_KEY"},
		{"WEATHER.BASE_URL", "WEATHER_BASE_URL"},
		{"WEATHER.TIMEOUT_SECONDS", "WEATHER_TIMEOUT_SECONDS"},
		{"WEATHER.REQUESTS_PER_SECOND", "WEATHER_REQUESTS_PER_SECOND"},
		{"WEATHER.BURST", "WEATHER_BURST"},
		// Location config
		{"LOCATION.MODE", "LOCATION_MODE"},
		{"LOCATION.PERMISSION_GRANTED", "LOCATION_PERMISSION_GRANTED"},
		{"LOCATION.LATITUDE", "LOCATION_LATITUDE"},
		{"LOCATION.LONGITUDE", "LOCATION_LONGITUDE"},
		{"LOCATION.IP_LOOKUP_URL", "LOCATION_IP_LOOKUP_URL"},
		// Redis config
		{"REDIS.ENABLED", "REDIS_ENABLED"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		// Rate limit config
		{"RATE_LIMIT.SCREEN_REQUESTS_PER_MINUTE", "RATE_LIMIT_SCREEN_REQUESTS_PER_MINUTE"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		log.Infow("Loaded configuration file", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"weather_provider", cfg.Weather.Provider,
		"weather_api_key", logger.MaskSensitiveString(cfg.Weather.APIKey, 3, 3),
		"location_mode", cfg.Location.Mode,
		"redis_enabled", cfg.Redis.Enabled,
	)
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if err := validateWeatherConfig(&cfg.Weather); err != nil {
		return err
	}

	if err := validateLocationConfig(&cfg.Location); err != nil {
		return err
	}

	if cfg.Redis.Enabled {
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis address is required when redis is enabled")
		}
		if cfg.Redis.Password == "" && cfg.Redis.UseTLS {
			log.Warn("Redis password is not set, but TLS is enabled. Ensure this is correct for your Redis provider.")
		}
	}

	if cfg.RateLimit.ScreenRequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit screen requests per minute must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	return nil
}

func validateWeatherConfig(w *WeatherConfig) error {
	w.Provider = strings.ToLower(strings.TrimSpace(w.Provider))
	switch w.Provider {
	case ProviderOpenWeatherMap:
		if w.APIKey == "" {
			return fmt.Errorf("weather API key is required for provider %s", w.Provider)
		}
	case ProviderOpenMeteo:
	default:
		return fmt.Errorf("unknown weather provider '%s'", w.Provider)
	}

	for name, raw := range map[string]string{
		"base url":      w.BaseURL,
		"geocoding url": w.GeocodingURL,
		"nominatim url": w.NominatimURL,
	} {
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid weather %s '%s': %w", name, raw, err)
		}
	}

	if w.TimeoutSeconds <= 0 {
		return fmt.Errorf("weather timeout must be positive")
	}
	if w.RequestsPerSecond <= 0 {
		return fmt.Errorf("weather requests per second must be positive")
	}
	if w.Burst <= 0 {
		return fmt.Errorf("weather burst must be positive")
	}
	return nil
}

func validateLocationConfig(l *LocationConfig) error {
	l.Mode = strings.ToLower(strings.TrimSpace(l.Mode))
	switch l.Mode {
	case LocationModeStatic:
		if _, err := valueobjects.NewGeoPoint(l.Latitude, l.Longitude); err != nil {
			return fmt.Errorf("invalid static location: %w", err)
		}
	case LocationModeIP:
		if _, err := url.ParseRequestURI(l.IPLookupURL); err != nil {
			return fmt.Errorf("invalid ip lookup url '%s': %w", l.IPLookupURL, err)
		}
	default:
		return fmt.Errorf("unknown location mode '%s'", l.Mode)
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
