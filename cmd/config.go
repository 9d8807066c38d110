// Package cmd implements the playsync command-line interface.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/playsync/playsync/color"
	"github.com/playsync/playsync/config"
	"github.com/playsync/playsync/filesystem"
	"github.com/playsync/playsync/icon"
	"github.com/playsync/playsync/key"
	"github.com/playsync/playsync/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func errUnknownKey(name string) error {
	closest := lo.MinBy(lo.Keys(config.Default), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})

	return fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(name),
		style.Fg(color.Yellow)(closest),
	)
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

// lookupField resolves the key given as the first argument or through --key.
func lookupField(cmd *cobra.Command, args []string) config.Field {
	name := lo.Must(cmd.Flags().GetString("key"))
	if len(args) > 0 {
		name = args[0]
	}

	if name == "" {
		handleErr(errors.New("key is required as an argument or --key flag"))
	}

	field, ok := config.Default[name]
	if !ok {
		handleErr(errUnknownKey(name))
	}
	return field
}

// persist writes the in-memory configuration, creating the file when missing.
func persist() {
	err := viper.WriteConfig()

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = viper.SafeWriteConfigAs(config.Path())
	}
	handleErr(err)
}

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// configCmd groups the configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change playsync settings",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Keys to describe")
	configInfoCmd.Flags().StringP("section", "S", "", "Describe only the keys of one section, e.g. engine")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	configInfoCmd.MarkFlagsMutuallyExclusive("key", "section")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
	_ = configInfoCmd.RegisterFlagCompletionFunc("section", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return lo.Uniq(lo.Map(lo.Keys(config.Default), func(k string, _ int) string {
			return config.Section(k)
		})), cobra.ShellCompDirectiveNoFileComp
	})

	configInfoCmd.SetOut(os.Stdout)
}

// configInfoCmd describes configuration fields.
var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe configuration fields with their current and default values",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			keys    = lo.Must(cmd.Flags().GetStringSlice("key"))
			section = lo.Must(cmd.Flags().GetString("section"))
			fields  = lo.Values(config.Default)
		)

		if len(keys) > 0 {
			fields = lo.Map(keys, func(k string, _ int) config.Field {
				field, ok := config.Default[k]
				if !ok {
					handleErr(errUnknownKey(k))
				}
				return field
			})
		}

		if section != "" {
			fields = lo.Filter(fields, func(f config.Field, _ int) bool {
				return config.Section(f.Key) == section
			})
			if len(fields) == 0 {
				handleErr(fmt.Errorf("no keys in section %s", style.Fg(color.Red)(section)))
			}
		}

		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Key < fields[j].Key
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		for i, field := range fields {
			if i == 0 || config.Section(fields[i-1].Key) != config.Section(field.Key) {
				if i > 0 {
					cmd.Println()
				}
				cmd.Println(style.Title(config.Section(field.Key)))
				cmd.Println()
			}

			cmd.Println(field.Pretty())
			if i < len(fields)-1 && config.Section(fields[i+1].Key) == config.Section(field.Key) {
				cmd.Println()
			}
		}
	},
}

// promptValue asks for a new value of field.
func promptValue(field config.Field) ([]string, error) {
	var prompt survey.Prompt
	_, isBool := field.Value.(bool)

	switch {
	case field.Key == key.IconsVariant:
		prompt = &survey.Select{
			Message: field.Key,
			Options: icon.AvailableVariants(),
			Default: viper.GetString(field.Key),
			Help:    field.Description,
		}
	case isBool:
		prompt = &survey.Select{
			Message: field.Key,
			Options: []string{"true", "false"},
			Default: strconv.FormatBool(viper.GetBool(field.Key)),
			Help:    field.Description,
		}
	default:
		prompt = &survey.Input{
			Message: field.Key,
			Default: fmt.Sprint(viper.Get(field.Key)),
			Help:    field.Description,
		}
	}

	var answer string
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(func(ans any) error {
		_, err := field.Parse([]string{fmt.Sprint(ans)})
		return err
	})); err != nil {
		return nil, err
	}

	return []string{answer}, nil
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringP("key", "k", "", "The configuration key to update")
	configSetCmd.Flags().StringSliceP("value", "v", []string{}, "The new value, prompted for when omitted")
	_ = configSetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configSetCmd updates one configuration key.
var configSetCmd = &cobra.Command{
	Use:               "set [key] [value]",
	Short:             "Update the value of a configuration key",
	Args:              cobra.MaximumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field := lookupField(cmd, args)

		raw := lo.Must(cmd.Flags().GetStringSlice("value"))
		if len(args) > 1 {
			raw = args[1:]
		}

		if len(raw) == 0 {
			prompted, err := promptValue(field)
			handleErr(err)
			raw = prompted
		}

		value, err := field.Parse(raw)
		handleErr(err)

		viper.Set(field.Key, value)
		persist()

		success("set %s to %s", style.Fg(color.Purple)(field.Key), style.Fg(color.Yellow)(fmt.Sprint(value)))
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configGetCmd.Flags().StringP("key", "k", "", "The configuration key to read")
	_ = configGetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
	configGetCmd.SetOut(os.Stdout)
}

// configGetCmd prints the effective value of a key.
var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print the effective value of a configuration key",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field := lookupField(cmd, args)
		cmd.Println(viper.Get(field.Key))
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

// configValidateCmd checks every effective value, including environment overrides.
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the effective configuration, including environment overrides",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(config.Validate())
		success("configuration is valid")
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite the existing configuration file")
}

// configWriteCmd writes the in-memory configuration to disk.
var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current configuration to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := config.Path()

		if lo.Must(cmd.Flags().GetBool("force")) {
			if err := filesystem.API().Remove(path); err != nil && !os.IsNotExist(err) {
				handleErr(err)
			}
		}

		handleErr(viper.SafeWriteConfigAs(path))
		success("wrote config to %s", path)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
	configDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

// configDeleteCmd removes the config file.
var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the config file",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		if !lo.Must(cmd.Flags().GetBool("yes")) {
			var confirmed bool
			handleErr(survey.AskOne(&survey.Confirm{
				Message: "Delete " + config.Path() + "?",
				Default: false,
			}, &confirmed))

			if !confirmed {
				return
			}
		}

		handleErr(filesystem.API().Remove(config.Path()))
		success("deleted config")
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().StringP("key", "k", "", "The configuration key to restore")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore every key")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
	configResetCmd.MarkFlagsOneRequired("key", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configResetCmd restores keys to their defaults.
var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore configuration keys to their default values",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("all")) {
			for name, field := range config.Default {
				viper.Set(name, field.Value)
			}
			persist()
			success("reset all config values")
			return
		}

		field := lookupField(cmd, nil)
		viper.Set(field.Key, field.Value)
		persist()

		success("reset %s to %s", style.Fg(color.Purple)(field.Key), style.Fg(color.Yellow)(fmt.Sprint(field.Value)))
	},
}
