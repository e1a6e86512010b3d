package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const AppName = "bloghive"

type FilesConfig struct {
	FontPath string `yaml:"font_path"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

type EmailConfig struct {
	Provider       string `yaml:"provider"` // smtp, sendgrid или log
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	SMTPUser       string `yaml:"smtp_user"`
	SMTPPassword   string `yaml:"smtp_password"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
}

type OTPConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	MaxAttempts int           `yaml:"max_attempts"`
	SendWindow  time.Duration `yaml:"send_window"`
	MaxSends    int           `yaml:"max_sends"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	JWT        JWTConfig      `yaml:"jwt"`
	Email      EmailConfig    `yaml:"email"`
	OTP        OTPConfig      `yaml:"otp"`
	Redis      RedisConfig    `yaml:"redis"`
	Telegram   TelegramConfig `yaml:"telegram"`
	Files      FilesConfig    `yaml:"files"`
	BcryptCost int            `yaml:"bcrypt_cost"`
	Cleanup    struct {
		Schedule string `yaml:"schedule"`
	} `yaml:"cleanup"`
}

func LoadConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open " + path + ": " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse " + path + ": " + err.Error())
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg
}

// секреты из окружения имеют приоритет над файлом
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Email.SMTPPassword = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		c.Email.SendGridAPIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 30 * 24 * time.Hour
	}
	if c.Email.Provider == "" {
		c.Email.Provider = "smtp"
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "BlogHive Team"
	}
	if c.OTP.TTL == 0 {
		c.OTP.TTL = 5 * time.Minute
	}
	if c.OTP.MaxAttempts == 0 {
		c.OTP.MaxAttempts = 3
	}
	if c.OTP.SendWindow == 0 {
		c.OTP.SendWindow = 10 * time.Minute
	}
	if c.OTP.MaxSends == 0 {
		c.OTP.MaxSends = 3
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}
	if c.Cleanup.Schedule == "" {
		c.Cleanup.Schedule = "@hourly"
	}
	if c.Files.FontPath == "" {
		c.Files.FontPath = "assets/fonts/DejaVuSans.ttf"
	}
}
