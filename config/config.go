// Package config registers every playsync setting with viper and loads the user's toml file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/playsync/playsync/constant"
	"github.com/playsync/playsync/filesystem"
	"github.com/playsync/playsync/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps configuration keys to environment variable suffixes.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults and environment bindings, then reads the config file if there is one.
func Setup() error {
	viper.SetConfigName(constant.Playsync)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Playsync)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

// Path returns the location of the config file, whether or not it exists.
func Path() string {
	return filepath.Join(where.Config(), constant.Playsync+".toml")
}

// Section returns the leading segment of a key, e.g. "engine" for engine.checked.
func Section(key string) string {
	section, _, _ := strings.Cut(key, ".")
	return section
}

// Validate checks the effective value of every key against its field.
func Validate() error {
	keys := lo.Keys(Default)
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		field := Default[k]

		raw := []string{fmt.Sprint(viper.Get(k))}
		if _, ok := field.Value.([]string); ok {
			raw = viper.GetStringSlice(k)
		}

		if _, err := field.Parse(raw); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
