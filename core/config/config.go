package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Name        string
	Env         string
	Port        int
	LogLevel    string
	FrontendURL string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type GoogleAPIConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type MicrosoftAPIConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type SecurityConfig struct {
	// TokenEncryptionKey is a hex-encoded 32-byte key used to encrypt
	// provider OAuth tokens at rest.
	TokenEncryptionKey string
}

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	GoogleAPI    GoogleAPIConfig
	MicrosoftAPI MicrosoftAPIConfig
	Security     SecurityConfig
}

var (
	cfg  *Config
	mu   sync.RWMutex
	once sync.Once
)

// Load reads .env (if present) and environment variables into the process config.
func Load() (*Config, error) {
	var loadErr error
	once.Do(func() {
		// .env is optional; real deployments use environment variables.
		_ = godotenv.Load()

		v := viper.New()
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		v.SetDefault("APP_NAME", "trackera")
		v.SetDefault("APP_ENV", "development")
		v.SetDefault("APP_PORT", 7070)
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("FRONTEND_URL", "http://localhost:3000")
		v.SetDefault("DB_HOST", "localhost")
		v.SetDefault("DB_PORT", 5432)
		v.SetDefault("DB_USER", "postgres")
		v.SetDefault("DB_NAME", "trackera")
		v.SetDefault("DB_SSLMODE", "disable")
		v.SetDefault("REDIS_HOST", "localhost")
		v.SetDefault("REDIS_PORT", 6379)
		v.SetDefault("REDIS_DB", 0)

		c := &Config{
			App: AppConfig{
				Name:        v.GetString("APP_NAME"),
				Env:         v.GetString("APP_ENV"),
				Port:        v.GetInt("APP_PORT"),
				LogLevel:    v.GetString("LOG_LEVEL"),
				FrontendURL: v.GetString("FRONTEND_URL"),
			},
			Database: DatabaseConfig{
				Host:     v.GetString("DB_HOST"),
				Port:     v.GetInt("DB_PORT"),
				User:     v.GetString("DB_USER"),
				Password: v.GetString("DB_PASSWORD"),
				DBName:   v.GetString("DB_NAME"),
				SSLMode:  v.GetString("DB_SSLMODE"),
			},
			Redis: RedisConfig{
				Host:     v.GetString("REDIS_HOST"),
				Port:     v.GetInt("REDIS_PORT"),
				Password: v.GetString("REDIS_PASSWORD"),
				DB:       v.GetInt("REDIS_DB"),
			},
			JWT: JWTConfig{
				Secret: v.GetString("JWT_SECRET"),
			},
			GoogleAPI: GoogleAPIConfig{
				ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
				ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
				RedirectURI:  v.GetString("GOOGLE_REDIRECT_URI"),
			},
			MicrosoftAPI: MicrosoftAPIConfig{
				ClientID:     v.GetString("MICROSOFT_CLIENT_ID"),
				ClientSecret: v.GetString("MICROSOFT_CLIENT_SECRET"),
				RedirectURI:  v.GetString("MICROSOFT_REDIRECT_URI"),
			},
			Security: SecurityConfig{
				TokenEncryptionKey: v.GetString("TOKEN_ENCRYPTION_KEY"),
			},
		}

		if c.JWT.Secret == "" && c.App.Env != "development" {
			loadErr = fmt.Errorf("JWT_SECRET is required outside development")
			return
		}

		mu.Lock()
		cfg = c
		mu.Unlock()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return Get(), nil
}

// Get returns the loaded config. Panics if Load has not been called.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if cfg == nil {
		panic("config: Load must be called before Get")
	}
	return cfg
}

// GetSafe returns the loaded config without panicking.
func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return cfg, cfg != nil
}

// SetForTesting replaces the process config. Test use only.
func SetForTesting(c *Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}
