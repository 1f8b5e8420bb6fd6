package internal

import (
	"birdsong-lab/runtime"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	NumberOfWorkers  int           `env:"NUMBER_OF_WORKERS,default=4" validate:"gte=1"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gte=0"`
	ProgressInterval time.Duration `env:"PROGRESS_INTERVAL,default=0s" validate:"gte=0"`
	LogLevel         string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	EnableCatalog    bool          `env:"ENABLE_CATALOG,default=true"`
	BadgerFilepath   string        `env:"BADGER_FILEPATH,default=.hvc/catalog" validate:"required_if=EnableCatalog true"`
	InspectPort      int           `env:"INSPECT_PORT,default=8081" validate:"gte=1,lte=65535"`
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c Config) Pool() runtime.PoolConfig {
	return runtime.PoolConfig{
		Workers:          c.NumberOfWorkers,
		RestartInterval:  c.RestartInterval,
		ProgressInterval: c.ProgressInterval,
	}
}
