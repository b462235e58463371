package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	Environment    string
	HTTPAddr       string
	TelegramToken  string // пустой токен отключает бота и уведомления в Telegram
	MigrationsPath string

	HoldHistoryRetention time.Duration
	CourseReminderDays   []int
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию из getenv
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBDSN:          getenv("DB_DSN"),
		Environment:    getenv("ENV"),
		HTTPAddr:       getenv("HTTP_ADDR"),
		TelegramToken:  getenv("TELEGRAM_TOKEN"),
		MigrationsPath: getenv("MIGRATIONS_PATH"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	retentionDays := 90
	if v := getenv("HOLD_HISTORY_RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("HOLD_HISTORY_RETENTION_DAYS must be a positive integer, got %q", v)
		}
		retentionDays = days
	}
	cfg.HoldHistoryRetention = time.Duration(retentionDays) * 24 * time.Hour

	reminderDays, err := parseDays(getenv("COURSE_REMINDER_DAYS"))
	if err != nil {
		return nil, err
	}
	cfg.CourseReminderDays = reminderDays

	return cfg, nil
}

// parseDays разбирает список вида "5,3,0"
func parseDays(v string) ([]int, error) {
	if strings.TrimSpace(v) == "" {
		return []int{5, 3, 0}, nil
	}

	var days []int
	for _, part := range strings.Split(v, ",") {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || day < 0 {
			return nil, fmt.Errorf("COURSE_REMINDER_DAYS must be a list of non-negative integers, got %q", v)
		}
		days = append(days, day)
	}
	return days, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// IsProduction true для ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
