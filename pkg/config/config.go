// Package config loads typed configuration sections from the process
// environment, optionally seeded from a .env file. Each component owns a
// struct with envconfig tags and a distinct prefix, so one flat environment
// feeds every section without key collisions.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const defaultEnvFile = ".env"

var (
	envFilePath string
	seedOnce    sync.Once
	seedErr     error
)

// MustNew is New for wiring code where a bad config should stop the process.
func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New seeds the environment once, then binds the variables under prefix into
// a fresh T. An explicit -env flag names the file to load; without it the
// default .env is loaded only when present.
func New[T any](prefix string) (*T, error) {
	if err := seedEnvironment(); err != nil {
		return nil, err
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("process %s config: %w", prefix, err)
	}

	return &conf, nil
}

// seedEnvironment exports the .env file into the process environment. It runs
// once per process; every later section load sees the same variables.
func seedEnvironment() error {
	seedOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFilePath, "env", "", "path to .env file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}

		if path := strings.TrimSpace(envFilePath); path != "" {
			seedErr = exportEnvFile(path)
			return
		}

		info, err := os.Stat(defaultEnvFile)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				seedErr = err
			}
			return
		}
		if info.IsDir() {
			return
		}
		seedErr = exportEnvFile(defaultEnvFile)
	})
	if seedErr != nil {
		return fmt.Errorf("load env file: %w", seedErr)
	}
	return nil
}

func exportEnvFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for key, value := range v.AllSettings() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			// Real environment wins over the file.
			continue
		}
		if err := os.Setenv(name, fmt.Sprint(value)); err != nil {
			return err
		}
	}

	return nil
}
