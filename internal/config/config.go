package config

import (
	"fmt"
	"log"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting, populated from the environment with an
// optional .env file layered underneath for local development.
type Config struct {
	Server struct {
		Port string `env:"PORT,default=8080"`
	}

	Database struct {
		Host     string `env:"DB_HOST,default=localhost"`
		Port     string `env:"DB_PORT,default=5432"`
		User     string `env:"DB_USER"`
		Password string `env:"DB_PASSWORD"`
		Name     string `env:"DB_NAME"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB,default=0"`
	}

	Auth struct {
		JWTSecret  string `env:"JWT_SECRET,required=true"`
		JWTIssuer  string `env:"JWT_ISSUER,default=habitpulse"`
		TokenHours int    `env:"JWT_TOKEN_HOURS,default=72"`
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}

func (c *Config) TokenDuration() time.Duration {
	return time.Duration(c.Auth.TokenHours) * time.Hour
}
