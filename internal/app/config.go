package app

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultCORSOrigin is the origin allowed when none is configured.
const DefaultCORSOrigin = "http://localhost:5173"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Addr      string `validate:"required,listen_addr"`
	SeedPath  string // hcl file or directory; empty means the built-in seed
	StaticDir string // served at "/" when set

	LogFormat       string        `validate:"oneof=text json"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	CORSOrigins     []string      `validate:"dive,required"`
	ShutdownTimeout time.Duration `validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("listen_addr", isListenAddr); err != nil {
		panic(err)
	}
	return v
}

// isListenAddr accepts an optional host, bracketed for IPv6, and a numeric
// port. Port 0 asks the kernel for a free one. Names are not resolved.
func isListenAddr(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	_, err = strconv.ParseUint(port, 10, 16)
	return err == nil
}

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
