package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	// SilentFail swallows delivery failures after the retry budget is spent.
	// When unset it follows Debug.
	SilentFail *bool `yaml:"silent_fail"`
}

type KafkaConfig struct {
	Broker  string `yaml:"broker"`
	Topic   string `yaml:"topic"`
	GroupID string `yaml:"group_id"`
}

type TelegramConfig struct {
	BotToken  string `yaml:"bot_token"`
	OpsChatID int64  `yaml:"ops_chat_id"`
}

type WorkerConfig struct {
	LowStockThreshold   int `yaml:"low_stock_threshold"`
	LowStockIntervalMin int `yaml:"low_stock_interval_min"`
}

type Config struct {
	Env    string `yaml:"env"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	SiteURL  string `yaml:"site_url"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret        string `yaml:"jwt_secret"`
		EmailTokenSecret string `yaml:"email_token_secret"`
	} `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Telegram TelegramConfig `yaml:"telegram"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// Debug reports whether the deployment runs in permissive mode.
func (c *Config) Debug() bool {
	return c.Env != "production"
}

// EmailSilentFail resolves the silent-fail toggle, defaulting to Debug.
func (c *Config) EmailSilentFail() bool {
	if c.Email.SilentFail != nil {
		return *c.Email.SilentFail
	}
	return c.Debug()
}

func LoadConfig() *Config {
	// Local dev keeps secrets in .env; production sets real env vars.
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Overload(); err != nil {
			log.Println("config: no .env file loaded:", err)
		}
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	cfg := &Config{}
	f, err := os.Open(path)
	if err != nil {
		log.Printf("config: %s not found, relying on env only", path)
	} else {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			panic("config: failed to parse " + path + ": " + err.Error())
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		cfg.SiteURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("EMAIL_TOKEN_SECRET"); v != "" {
		cfg.Auth.EmailTokenSecret = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}
	if v := os.Getenv("KAFKA_BROKER"); v != "" {
		cfg.Kafka.Broker = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("EMAIL_SILENT_FAIL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("config: invalid EMAIL_SILENT_FAIL=%q, ignoring", v)
		} else {
			cfg.Email.SilentFail = &b
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = "http://127.0.0.1:8080"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "notifications"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "shopcore-worker"
	}
	if cfg.Worker.LowStockThreshold == 0 {
		cfg.Worker.LowStockThreshold = 5
	}
	if cfg.Worker.LowStockIntervalMin == 0 {
		cfg.Worker.LowStockIntervalMin = 60
	}
}
