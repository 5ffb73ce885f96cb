package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Mapbox   MapboxConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Nav      NavConfig
	Log      LogConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type MapboxConfig struct {
	BaseURL        string
	AccessToken    string
	RequestTimeout int // seconds
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type LogConfig struct {
	Level string
}

// NavConfig - настройки навигации по умолчанию
type NavConfig struct {
	DefaultLanguage  string
	DefaultUnits     string
	MapStyleURLDay   string
	MapStyleURLNight string

	// Порог прибытия: сессия считается завершённой, когда до финальной
	// точки остаётся меньше этого расстояния (метры)
	ArrivalThreshold float64

	// Параметры камеры
	FollowZoom        float64
	FollowPitch       float64
	OverviewPadding   float64
	AnimationDuration time.Duration
	AnimationTick     time.Duration

	// Симуляция движения по маршруту
	SimulationTick  time.Duration
	SimulationSpeed float64 // м/с
}

type WorkerConfig struct {
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Mapbox: MapboxConfig{
			BaseURL:        viper.GetString("MAPBOX_BASE_URL"),
			AccessToken:    viper.GetString("MAPBOX_ACCESS_TOKEN"),
			RequestTimeout: viper.GetInt("MAPBOX_REQUEST_TIMEOUT"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Database: DatabaseConfig{
			Enabled:         viper.GetBool("DB_ENABLED"),
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Nav: NavConfig{
			DefaultLanguage:   viper.GetString("NAV_DEFAULT_LANGUAGE"),
			DefaultUnits:      viper.GetString("NAV_DEFAULT_UNITS"),
			MapStyleURLDay:    viper.GetString("NAV_MAP_STYLE_URL_DAY"),
			MapStyleURLNight:  viper.GetString("NAV_MAP_STYLE_URL_NIGHT"),
			ArrivalThreshold:  viper.GetFloat64("NAV_ARRIVAL_THRESHOLD"),
			FollowZoom:        viper.GetFloat64("NAV_FOLLOW_ZOOM"),
			FollowPitch:       viper.GetFloat64("NAV_FOLLOW_PITCH"),
			OverviewPadding:   viper.GetFloat64("NAV_OVERVIEW_PADDING"),
			AnimationDuration: time.Duration(viper.GetInt("NAV_ANIMATION_DURATION")) * time.Millisecond,
			AnimationTick:     time.Duration(viper.GetInt("NAV_ANIMATION_TICK")) * time.Millisecond,
			SimulationTick:    time.Duration(viper.GetInt("NAV_SIMULATION_TICK")) * time.Millisecond,
			SimulationSpeed:   viper.GetFloat64("NAV_SIMULATION_SPEED"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults заполняет значения по умолчанию, если они не заданы
func applyDefaults(cfg *Config) {
	if cfg.Mapbox.BaseURL == "" {
		cfg.Mapbox.BaseURL = "https://api.mapbox.com"
	}
	if cfg.Mapbox.RequestTimeout == 0 {
		cfg.Mapbox.RequestTimeout = 30
	}
	if cfg.Nav.DefaultLanguage == "" {
		cfg.Nav.DefaultLanguage = "en"
	}
	if cfg.Nav.DefaultUnits == "" {
		cfg.Nav.DefaultUnits = "metric"
	}
	if cfg.Nav.ArrivalThreshold == 0 {
		cfg.Nav.ArrivalThreshold = 30
	}
	if cfg.Nav.FollowZoom == 0 {
		cfg.Nav.FollowZoom = 16
	}
	if cfg.Nav.FollowPitch == 0 {
		cfg.Nav.FollowPitch = 45
	}
	if cfg.Nav.OverviewPadding == 0 {
		cfg.Nav.OverviewPadding = 64
	}
	if cfg.Nav.AnimationDuration == 0 {
		cfg.Nav.AnimationDuration = 750 * time.Millisecond
	}
	if cfg.Nav.AnimationTick == 0 {
		cfg.Nav.AnimationTick = 50 * time.Millisecond
	}
	if cfg.Nav.SimulationTick == 0 {
		cfg.Nav.SimulationTick = 1000 * time.Millisecond
	}
	if cfg.Nav.SimulationSpeed == 0 {
		cfg.Nav.SimulationSpeed = 13.9 // ~50 км/ч
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "navigation-triplog-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
