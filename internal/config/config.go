package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/prasetyow/warecash/internal/models"
	"github.com/prasetyow/warecash/pkg/db"
)

// LDAPConfig is loaded once at startup and passed into the auth service as an
// immutable value. An all-empty value means the directory was never configured.
type LDAPConfig struct {
	Host   string
	Port   int
	BaseDN string
	Domain string
}

func (c LDAPConfig) IsZero() bool {
	return c.Host == "" && c.BaseDN == "" && c.Domain == ""
}

type Config struct {
	HTTP_PORT string
	LOG_LEVEL string

	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	REDIS_ADDR     string
	REDIS_PASSWORD string
	REDIS_DB       int

	LDAP LDAPConfig

	JWT_SECRET     string
	REFRESH_SECRET string

	KAFKA_ADDRESS string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		HTTP_PORT: getDefault("HTTP_PORT", "8080"),
		LOG_LEVEL: os.Getenv("LOG_LEVEL"),

		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		REDIS_ADDR:     getDefault("REDIS_ADDR", "localhost:6379"),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),
		REDIS_DB:       getInt("REDIS_DB", 0),

		LDAP: LDAPConfig{
			Host:   os.Getenv("LDAP_HOST"),
			Port:   getInt("LDAP_PORT", 389),
			BaseDN: os.Getenv("LDAP_BASE_DN"),
			Domain: os.Getenv("LDAP_DOMAIN"),
		},

		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		REFRESH_SECRET: os.Getenv("REFRESH_SECRET"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),
	}

	return config, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
}

func InitDB(c *Config) (*gorm.DB, error) {
	gdb, err := db.Open(context.Background(), c.DSN())
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(
		&models.Warehouse{},
		&models.User{},
		&models.Category{},
		&models.Budget{},
		&models.FlowLog{},
	); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return gdb, nil
}

func getDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func getInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
