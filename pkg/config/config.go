package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type GitHubConfig struct {
	Token        string
	Organization string
}

type PipelineConfig struct {
	StartDate       time.Time
	OutputDir       string
	RankingLimit    int
	RepositoryLimit int
	Denylist        []string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	startDate, err := time.Parse("2006-01-02", getEnv("HISTORY_START_DATE", "2022-01-01"))
	if err != nil {
		return err
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./orgpulse.db"),
		},
		GitHub: GitHubConfig{
			Token:        getEnv("GITHUB_TOKEN", ""),
			Organization: getEnv("GITHUB_ORGANIZATION", ""),
		},
		Pipeline: PipelineConfig{
			StartDate:       startDate,
			OutputDir:       getEnv("OUTPUT_DIR", "./results"),
			RankingLimit:    getEnvAsInt("RANKING_LIMIT", 50),
			RepositoryLimit: getEnvAsInt("REPOSITORY_LIMIT", 25),
			Denylist:        getEnvAsList("RANKING_DENYLIST", defaultDenylist),
		},
	}

	return nil
}

// defaultDenylist covers the bot and service accounts that show up in
// issue and PR activity streams.
var defaultDenylist = []string{
	"dependabot[bot]",
	"github-actions[bot]",
	"github-actions",
	"renovate[bot]",
	"codecov[bot]",
	"codecov",
	"pre-commit-ci[bot]",
	"mergify[bot]",
	"stale",
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList gets a comma-separated environment variable or returns a default value
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
