package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	BankName string
	LogLevel string

	PinHashTime      uint32
	PinHashMemoryKiB uint32
	PinHashThreads   uint8

	MaxIdentifierAttempts int
	OperatorWorkers       int

	// Seed user created at startup when SeedPin is set.
	SeedFirstName string
	SeedLastName  string
	SeedPin       string
}

// ProcessEnvironmentVariables loads defaults, then a .env file in the
// working directory if present, then the process environment.
func ProcessEnvironmentVariables() (*Config, error) {
	return ProcessEnvironmentFiles(".env")
}

func ProcessEnvironmentFiles(files ...string) (*Config, error) {
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("godotenv.Load %s: %w", f, err)
		}
	}

	env := Config{
		BankName:              "Bank of Drazil",
		LogLevel:              "info",
		PinHashTime:           3,
		PinHashMemoryKiB:      64 * 1024,
		PinHashThreads:        4,
		MaxIdentifierAttempts: 1000,
		OperatorWorkers:       1,
		SeedFirstName:         "John",
		SeedLastName:          "Doe",
	}

	if v := os.Getenv("BANK_NAME"); len(v) != 0 {
		env.BankName = v
	}

	if v := os.Getenv("LOG_LEVEL"); len(v) != 0 {
		env.LogLevel = v
	}

	if v := os.Getenv("PIN_HASH_TIME"); len(v) != 0 {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("PIN_HASH_TIME: %w", err)
		}
		env.PinHashTime = uint32(n)
	}

	if v := os.Getenv("PIN_HASH_MEMORY_KIB"); len(v) != 0 {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("PIN_HASH_MEMORY_KIB: %w", err)
		}
		env.PinHashMemoryKiB = uint32(n)
	}

	if v := os.Getenv("PIN_HASH_THREADS"); len(v) != 0 {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("PIN_HASH_THREADS: %w", err)
		}
		env.PinHashThreads = uint8(n)
	}

	if v := os.Getenv("MAX_IDENTIFIER_ATTEMPTS"); len(v) != 0 {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("MAX_IDENTIFIER_ATTEMPTS: %w", err)
		}
		env.MaxIdentifierAttempts = n
	}

	if v := os.Getenv("OPERATOR_WORKERS"); len(v) != 0 {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("OPERATOR_WORKERS: %w", err)
		}
		env.OperatorWorkers = n
	}

	if v := os.Getenv("SEED_FIRST_NAME"); len(v) != 0 {
		env.SeedFirstName = v
	}

	if v := os.Getenv("SEED_LAST_NAME"); len(v) != 0 {
		env.SeedLastName = v
	}

	if v := os.Getenv("SEED_PIN"); len(v) != 0 {
		env.SeedPin = v
	}

	return &env, nil
}
