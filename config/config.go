package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Upstream UpstreamConfig
	Tiles    TileConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type CORSConfig struct {
	AllowedOrigins string
}

type UpstreamConfig struct {
	OpenWeatherAPIKey string
	OpenCageAPIKey    string
	YouTubeAPIKey     string
	TimeoutSeconds    int
}

type TileConfig struct {
	// URLTemplate must contain {z}, {x} and {y} placeholders.
	URLTemplate string
}

const DefaultTileURLTemplate = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func LoadConfig() (*Config, error) {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	timeoutSec, err := getIntEnv("UPSTREAM_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT_SECONDS: %w", err)
	}

	tileTemplate := getEnv("TILE_SERVER_URL", DefaultTileURLTemplate)
	if err := ValidateTileTemplate(tileTemplate); err != nil {
		return nil, fmt.Errorf("invalid TILE_SERVER_URL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "weather"),
			Password: getEnv("DB_PASSWORD", "weather_dev_password"),
			Name:     getEnv("DB_NAME", "weather"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Upstream: UpstreamConfig{
			OpenWeatherAPIKey: getEnv("OPENWEATHER_API_KEY", ""),
			OpenCageAPIKey:    getEnv("OPENCAGE_API_KEY", ""),
			YouTubeAPIKey:     getEnv("YOUTUBE_API_KEY", ""),
			TimeoutSeconds:    timeoutSec,
		},
		Tiles: TileConfig{
			URLTemplate: tileTemplate,
		},
	}

	return cfg, nil
}

// ValidateTileTemplate rejects templates missing any tile-grid placeholder.
func ValidateTileTemplate(template string) error {
	for _, placeholder := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(template, placeholder) {
			return fmt.Errorf("template %q is missing the %s placeholder", template, placeholder)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
