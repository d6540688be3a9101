// Package config загружает конфигурацию сервиса из TOML файла
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config корневая конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Notify    NotifyConfig    `toml:"notify"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN собирает строку подключения
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// SchedulerConfig настройки сериализации и фоновых процессов
type SchedulerConfig struct {
	// Таймаут ожидания очереди к объекту, секунды
	LockTimeout int `toml:"lock_timeout"`
	// Период фонового завершения бронирований, секунды
	SweepInterval int `toml:"sweep_interval"`
	// Время жизни кэша повестки, секунды
	AgendaCacheTTL int `toml:"agenda_cache_ttl"`
}

// NotifyConfig настройки сервиса уведомлений
type NotifyConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// Load читает и валидирует конфигурацию из файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be between 1 and 65535")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database.dbname is required")
	}
	if c.Scheduler.LockTimeout <= 0 {
		return fmt.Errorf("scheduler.lock_timeout must be positive")
	}
	if c.Scheduler.SweepInterval <= 0 {
		return fmt.Errorf("scheduler.sweep_interval must be positive")
	}
	if c.Notify.URL == "" {
		return fmt.Errorf("notify.url is required")
	}
	return nil
}
