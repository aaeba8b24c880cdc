// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		HTTP   HTTP   `envPrefix:"HTTP_"`
		Grid   Grid   `envPrefix:"GRID_"`
		Submap Submap `envPrefix:"SUBMAP_"`
		DB     DB     `envPrefix:"DB_"`
	}

	HTTP struct {
		Addr         string        `env:"ADDR" envDefault:":8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"0"`
		IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	}

	Grid struct {
		Resolution    float64       `env:"RESOLUTION" envDefault:"0.05"`
		PublishPeriod time.Duration `env:"PUBLISH_PERIOD" envDefault:"1s"`
	}

	Submap struct {
		QueryURL     string        `env:"QUERY_URL" envDefault:""`
		QueryTimeout time.Duration `env:"QUERY_TIMEOUT" envDefault:"10s"`
	}

	DB struct {
		Path             string        `env:"PATH" envDefault:""`
		SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"30s"`
	}
)

// New reads configuration from the environment. A missing .env file is not an
// error; everything has a default except the submap query URL, which stays
// empty unless set.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] no .env file loaded: %v", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
