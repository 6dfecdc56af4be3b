package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string `mapstructure:"DB_DSN"`
	Environment    string `mapstructure:"ENV"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	// HorizonMonths — горизонт генерации для бесконечных правил
	HorizonMonths int `mapstructure:"HORIZON_MONTHS"`
	// HardLimit — абсолютный потолок количества приёмов в серии
	HardLimit int `mapstructure:"HARD_LIMIT"`
	// AllowSwap — разрешён ли обмен слотами при конфликтном перемещении
	AllowSwap bool `mapstructure:"ALLOW_SWAP"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	// Читаем напрямую из переменных окружения (после godotenv.Load они там)
	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		Environment:    os.Getenv("ENV"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		HorizonMonths:  envInt("HORIZON_MONTHS", 12),
		HardLimit:      envInt("HARD_LIMIT", 52),
		AllowSwap:      envBool("ALLOW_SWAP", true),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.HorizonMonths <= 0 {
		return nil, fmt.Errorf("HORIZON_MONTHS must be positive")
	}
	if cfg.HardLimit <= 0 {
		return nil, fmt.Errorf("HARD_LIMIT must be positive")
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %t", key, raw, def)
		return def
	}
	return v
}
