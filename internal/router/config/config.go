package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress   string        `mapstructure:"SERVER_ADDRESS"`
	AppEnv          string        `mapstructure:"APP_ENV"`
	PostgresConn    string        `mapstructure:"POSTGRES_CONN"`
	PostgresUser    string        `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass    string        `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost    string        `mapstructure:"POSTGRES_HOST"`
	PostgresPort    string        `mapstructure:"POSTGRES_PORT"`
	PostgresDB      string        `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL    string        `mapstructure:"MIGRATION_URL"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	LogFormat       string        `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]interface{}{
	"SERVER_ADDRESS":    "0.0.0.0:8080",
	"APP_ENV":           "production",
	"POSTGRES_CONN":     "",
	"POSTGRES_USERNAME": "",
	"POSTGRES_PASSWORD": "",
	"POSTGRES_HOST":     "",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_DATABASE": "",
	"MIGRATION_URL":     "file://migrations",
	"JWT_SECRET":        "",
	"REQUEST_TIMEOUT":   "5s",
	"SHUTDOWN_TIMEOUT":  "10s",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "text",
}

// LoadConfig загружает конфигурацию из app.env в каталоге path.
// Переменные окружения (и необязательный .env) имеют приоритет над файлом.
func LoadConfig(path string) (cfg Config, err error) {
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}
	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate проверяет обязательные параметры.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// IsDevelopment сообщает, что сервис запущен в режиме разработки.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// DatabaseURL возвращает строку подключения: POSTGRES_CONN или собранную из отдельных параметров.
func (c Config) DatabaseURL() (string, error) {
	if c.PostgresConn != "" {
		return c.PostgresConn, nil
	}
	if c.PostgresUser == "" || c.PostgresPass == "" || c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDB == "" {
		return "", errors.New("one or more database connection environment variables are missing")
	}
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPass),
		Host:     net.JoinHostPort(c.PostgresHost, c.PostgresPort),
		Path:     c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return dsn.String(), nil
}
