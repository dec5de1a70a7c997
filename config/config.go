package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
	} `mapstructure:"app"`
	Server struct {
		Port            string        `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		// TrustedProxies lists the CIDRs or addresses whose forwarding
		// headers are believed when resolving client IPs.
		TrustedProxies []string `mapstructure:"trusted_proxies"`
	} `mapstructure:"server"`
	Database struct {
		Driver          string        `mapstructure:"driver"`
		Host            string        `mapstructure:"host"`
		Port            string        `mapstructure:"port"`
		User            string        `mapstructure:"user"`
		Password        string        `mapstructure:"password"`
		Name            string        `mapstructure:"name"`
		DSN             string        `mapstructure:"dsn"`
		MaxOpenConns    int           `mapstructure:"max_open_conns"`
		MaxIdleConns    int           `mapstructure:"max_idle_conns"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
		Migrate         bool          `mapstructure:"migrate"`
	} `mapstructure:"database"`
	JWT struct {
		SecretKey           string `mapstructure:"secret_key"`
		AccessExpireMinutes int    `mapstructure:"access_expire_minutes"`
		RefreshExpireDays   int    `mapstructure:"refresh_expire_days"`
	} `mapstructure:"jwt"`
	Auth struct {
		SignInRate  float64 `mapstructure:"sign_in_rate"`
		SignInBurst int     `mapstructure:"sign_in_burst"`
	} `mapstructure:"auth"`
	Qna struct {
		ViewTokenMinutes    int           `mapstructure:"view_token_minutes"`
		MaxPasswordAttempts int           `mapstructure:"max_password_attempts"`
		Lockout             time.Duration `mapstructure:"lockout"`
	} `mapstructure:"qna"`
	Redis struct {
		Enabled  bool          `mapstructure:"enabled"`
		Host     string        `mapstructure:"host"`
		Port     string        `mapstructure:"port"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	File struct {
		UploadDir       string        `mapstructure:"upload_dir"`
		MaxSize         int64         `mapstructure:"max_size"`
		TempMaxAgeHours int           `mapstructure:"temp_max_age_hours"`
		CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	} `mapstructure:"file"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("app.name", "academy-api")
	viper.SetDefault("app.version", "1.0.0")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "5s")

	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.dsn", "academy.db")
	viper.SetDefault("database.max_open_conns", 20)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "30m")
	viper.SetDefault("database.migrate", true)

	viper.SetDefault("jwt.access_expire_minutes", 15)
	viper.SetDefault("jwt.refresh_expire_days", 14)

	viper.SetDefault("auth.sign_in_rate", 1.0)
	viper.SetDefault("auth.sign_in_burst", 10)

	viper.SetDefault("qna.view_token_minutes", 30)
	viper.SetDefault("qna.max_password_attempts", 5)
	viper.SetDefault("qna.lockout", "1h")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.ttl", "5m")

	viper.SetDefault("file.upload_dir", "uploads")
	viper.SetDefault("file.max_size", 10*1024*1024)
	viper.SetDefault("file.temp_max_age_hours", 1)
	viper.SetDefault("file.cleanup_interval", "30m")

	viper.SetDefault("log.level", "info")
}

// LoadConfig reads config.yml from path. Environment variables override
// file values, e.g. DATABASE_DRIVER for database.driver.
func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Error reading config file, %s", err)
		}
		log.Printf("Config file not found in %s, using defaults and environment", path)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	if AppConfig.JWT.SecretKey == "" {
		log.Fatalf("jwt.secret_key must be set")
	}
}
