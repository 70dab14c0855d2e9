package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine        string // sqlite (default) | postgres
		Dir           string // sqlite data directory; empty means in-memory
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
	}

	ServerConfig struct {
		Address         string
		ShutdownTimeout time.Duration
	}

	EmailConfig struct {
		From            mail.Address
		SendgridApiKey  string
		BackupRecipient string
	}

	Config struct {
		AppName                   string
		Env                       string
		Build                     string
		Debug                     bool
		TestMode                  bool
		SecretKey                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		RollbarToken              string
		ExportDir                 string

		Database DatabaseConfig
		Server   ServerConfig
		Email    EmailConfig
	}
)

func (db DatabaseConfig) Address() string {
	if db.Port == "" {
		return db.Host
	}
	return db.Host + ":" + db.Port
}

// NewConfig reads the configuration from PAPER_* environment variables, optionally loaded
// from config/.env.<env> (eg. PAPER_DATABASE_ENGINE=postgres).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Paper")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "0z$k!7pq^w2+r9l#e4)x8m(c1v&n3b6t")
	v.SetDefault("jwtExpirationDelta", 12*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 7*24*time.Hour)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("exportDir", defaultExportDir())
	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.dir", defaultDataDir())
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "paper")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.name", "paper")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("server.address", "127.0.0.1:8765")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("email.from", "Paper <noreply@localhost>")
	v.SetDefault("email.sendgridApiKey", "")
	v.SetDefault("email.backupRecipient", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (default), TEST, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.dir", "")
	}
	v.SetEnvPrefix("PAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	from, err := mail.ParseAddress(v.GetString("email.from"))
	if err != nil {
		log.Fatalf("config.email.from: %v", err)
	}

	return &Config{
		AppName:                   v.GetString("appName"),
		Env:                       env,
		Build:                     v.GetString("build"),
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		SecretKey:                 v.GetString("secretKey"),
		JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
		JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		RollbarToken:              v.GetString("rollbarToken"),
		ExportDir:                 v.GetString("exportDir"),
		Database: DatabaseConfig{
			Engine:        strings.ToLower(v.GetString("database.engine")),
			Dir:           v.GetString("database.dir"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Name:          v.GetString("database.name"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Email: EmailConfig{
			From:            *from,
			SendgridApiKey:  v.GetString("email.sendgridApiKey"),
			BackupRecipient: v.GetString("email.backupRecipient"),
		},
	}
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("Paper", "Attendance Records")
	}
	return filepath.Join(home, "Documents", "Paper", "Attendance Records")
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(dir, "paper")
}
