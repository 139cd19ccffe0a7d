package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Recommend RecommendConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	AllowOrigins   []string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

// RedisConfig is optional. An empty host keeps sessions in process memory.
type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

func (r RedisConfig) Enabled() bool {
	return r.RedisHost != ""
}

// RecommendConfig holds the engine thresholds.
type RecommendConfig struct {
	NeighborMinSimilarity float64
	NeighborCount         int
	LatentMinScore        float64
	MaxRank               int
	DecayDays             float64
	Parallel              bool
	SessionTTL            time.Duration
	Seed                  int64
}

func DefaultRecommendConfig() RecommendConfig {
	return RecommendConfig{
		NeighborMinSimilarity: 0.1,
		NeighborCount:         10,
		LatentMinScore:        0.1,
		MaxRank:               20,
		DecayDays:             30,
		Parallel:              true,
		SessionTTL:            30 * time.Minute,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	reco, err := loadRecommend()
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "MySmartMarket Recommendation API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: timeout,
			AllowOrigins:   []string{"http://localhost:3000", "http://localhost:8080"},
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Name:        getEnv("DB_NAME", "recommendation_db"),
			SSLMode:     getEnv("DB_SSL_MODE", "disable"),
			AutoMigrate: getEnv("DB_AUTO_MIGRATE", "true") == "true",
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Recommend: reco,
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func loadRecommend() (RecommendConfig, error) {
	rc := DefaultRecommendConfig()
	var err error

	if rc.NeighborMinSimilarity, err = getFloat("RECO_NEIGHBOR_MIN_SIMILARITY", rc.NeighborMinSimilarity); err != nil {
		return rc, err
	}
	if rc.LatentMinScore, err = getFloat("RECO_LATENT_MIN_SCORE", rc.LatentMinScore); err != nil {
		return rc, err
	}
	if rc.DecayDays, err = getFloat("RECO_DECAY_DAYS", rc.DecayDays); err != nil {
		return rc, err
	}
	if rc.NeighborCount, err = getInt("RECO_NEIGHBOR_COUNT", rc.NeighborCount); err != nil {
		return rc, err
	}
	if rc.MaxRank, err = getInt("RECO_MAX_RANK", rc.MaxRank); err != nil {
		return rc, err
	}
	seed, err := getInt("RECO_SEED", 0)
	if err != nil {
		return rc, err
	}
	rc.Seed = int64(seed)

	rc.Parallel = getEnv("RECO_PARALLEL", "true") == "true"

	if raw := os.Getenv("RECO_SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return rc, fmt.Errorf("invalid RECO_SESSION_TTL: %w", err)
		}
		rc.SessionTTL = ttl
	}

	if rc.DecayDays <= 0 {
		return rc, errors.New("RECO_DECAY_DAYS must be positive")
	}
	if rc.NeighborMinSimilarity <= 0 {
		return rc, errors.New("RECO_NEIGHBOR_MIN_SIMILARITY must be positive")
	}
	if rc.LatentMinScore <= 0 {
		return rc, errors.New("RECO_LATENT_MIN_SCORE must be positive")
	}
	if rc.NeighborCount < 1 {
		return rc, errors.New("RECO_NEIGHBOR_COUNT must be at least 1")
	}
	if rc.MaxRank < 2 {
		return rc, errors.New("RECO_MAX_RANK must be at least 2")
	}

	return rc, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getFloat(key string, defaultVal float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getInt(key string, defaultVal int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
