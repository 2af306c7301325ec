package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix - префикс переменных окружения, например HR_ETL_DB_HOST. Ключ без префикса (DB_HOST) тоже принимается.
const EnvPrefix = "HR_ETL"

// ETLConfig содержит конфигурацию ETL-процесса
type ETLConfig struct {
	DatabaseConfig `yaml:",inline"`

	// Исходный табличный файл (.csv или .xlsx)
	SourcePath string `yaml:"source_path" envconfig:"SOURCE_PATH" default:"hr.csv" validate:"required"`

	// Необязательный YAML-файл, переопределяющий DefaultRules
	RulesFile string `yaml:"rules_file" envconfig:"RULES_FILE"`

	// Количество строк в одном INSERT
	BatchSize int `yaml:"batch_size" envconfig:"BATCH_SIZE" default:"500" validate:"min=1"`

	// Интервал запуска ETL в режиме scheduled
	RunInterval time.Duration `yaml:"run_interval" envconfig:"RUN_INTERVAL" default:"24h" validate:"gt=0"`

	EnableDetailedLogging bool   `yaml:"detailed_logging" envconfig:"DETAILED_LOGGING" default:"false"`
	LogFile               string `yaml:"log_file" envconfig:"LOG_FILE"`

	// Если задан, обогащенный фрейм сохраняется сюда перед загрузкой (CSV + snappy)
	SnapshotPath string `yaml:"snapshot_path" envconfig:"SNAPSHOT_PATH"`

	// Адрес API статуса в режиме serve
	StatusAddr string `yaml:"status_addr" envconfig:"STATUS_ADDR" default:":8090" validate:"required"`

	Rules PipelineRules `yaml:"rules" ignored:"true"`
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Driver   string `yaml:"driver" envconfig:"DB_DRIVER" default:"mysql" validate:"oneof=mysql postgres"`
	Host     string `yaml:"host" envconfig:"DB_HOST" validate:"required"`
	Port     int    `yaml:"port" envconfig:"DB_PORT" validate:"min=1,max=65535"` // 0 - порт по умолчанию для драйвера
	User     string `yaml:"user" envconfig:"DB_USER" validate:"required"`
	Password string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name     string `yaml:"name" envconfig:"DB_NAME" validate:"required"`
}

// Load читает .env (если есть), переменные окружения и файл правил, затем проверяет результат
func Load() (*ETLConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg ETLConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = DefaultPort(cfg.Driver)
	}

	cfg.Rules = DefaultRules()
	if cfg.RulesFile != "" {
		if err := LoadRulesFile(cfg.RulesFile, &cfg.Rules); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadRulesFile накладывает YAML-файл path поверх rules
func LoadRulesFile(path string, rules *PipelineRules) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, rules); err != nil {
		return fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return nil
}

// Validate проверяет ограничения конфигурации и правил
func (c *ETLConfig) Validate() error {
	return validator.New().Struct(c)
}
