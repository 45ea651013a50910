package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"prod"`
	Timezone     string `yaml:"timezone" env:"TZ_NAME" env-default:"America/Mexico_City"`
	FrontendDir  string `yaml:"frontend_dir" env:"FRONTEND_DIR" env-default:"./public"`
	HTTPServer   `yaml:"http_server"`
	Storage      Storage `yaml:"storage"`
	Flush        Flush   `yaml:"flush"`
	CORS         CORS    `yaml:"cors"`
	Seed         Seed    `yaml:"seed"`
	MigrationKey string  `yaml:"migration_key" env:"MIGRATION_KEY"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:3000"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Storage selects the durable backend. The JSON file is always the fallback.
type Storage struct {
	Backend   string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"file"`
	DataFile  string `yaml:"data_file" env:"DATA_FILE" env-default:"./datos_taller.json"`
	BackupDir string `yaml:"backup_dir" env:"BACKUP_DIR" env-default:"."`
	MySQL     MySQL  `yaml:"mysql"`
	Redis     Redis  `yaml:"redis"`
}

type MySQL struct {
	User      string `yaml:"db_user" env:"DB_USER"`
	Password  string `yaml:"db_password" env:"DB_PASSWORD"`
	Host      string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	Port      int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	Name      string `yaml:"db_name" env:"DB_NAME"`
	ParseTime bool   `yaml:"parse_time" env-default:"true"`
}

type Redis struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Key      string `yaml:"key" env:"REDIS_KEY" env-default:"taller:datos"`
}

type Flush struct {
	Debounce   time.Duration `yaml:"debounce" env-default:"200ms"`
	Interval   time.Duration `yaml:"interval" env-default:"30s"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ORIGINS" env-default:"http://localhost:3000,http://localhost:5173"`
}

// Seed holds the initial staff passwords used when no data exists yet.
type Seed struct {
	AdminPassword      string `yaml:"admin_password" env:"ADMIN_PASSWORD" env-default:"admin123"`
	SupervisorPassword string `yaml:"supervisor_password" env:"ENCARGADA_PASSWORD" env-default:"enc2025"`
}

// DSN builds the go-sql-driver connection string.
func (m MySQL) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=%v",
		m.User,
		m.Password,
		m.Host,
		m.Port,
		m.Name,
		m.ParseTime,
	)
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load reads .env (optional), then the YAML file at CONFIG_PATH or the default path.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read env config: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", configPath, err)
	}
	return &cfg, nil
}

func MustConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}
