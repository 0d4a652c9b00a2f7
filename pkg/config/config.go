// Package config resolves envconfig-tagged structs from the process
// environment. Callers export a .env file first with LoadEnv; flag parsing
// stays with the binary.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// DefaultEnvFile is probed when LoadEnv gets an empty path.
const DefaultEnvFile = ".env"

// LoadEnv exports the key/value pairs of a .env file into the process
// environment, keys uppercased. With an empty path the default file is used
// and a missing one is not an error; an explicit path must exist.
func LoadEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		info, err := os.Stat(DefaultEnvFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		path = DefaultEnvFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	for k, val := range v.AllSettings() {
		if err := os.Setenv(strings.ToUpper(k), fmt.Sprint(val)); err != nil {
			return err
		}
	}
	return nil
}

// New fills a T from environment variables carrying the given prefix.
func New[T any](prefix string) (*T, error) {
	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}
