// Package cmd implements the playsync command-line interface.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/playsync/playsync/color"
	"github.com/playsync/playsync/constant"
	"github.com/playsync/playsync/icon"
	"github.com/playsync/playsync/key"
	"github.com/playsync/playsync/log"
	"github.com/playsync/playsync/style"
	"github.com/playsync/playsync/util"
	"github.com/playsync/playsync/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, square)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().Bool("checked", false, "Treat engine precondition violations as fatal")
	lo.Must0(viper.BindPFlag(key.EngineChecked, rootCmd.PersistentFlags().Lookup("checked")))

	rootCmd.PersistentFlags().Int("scrub-window", 0, "Scrub audio window in milliseconds")
	lo.Must0(viper.BindPFlag(key.EngineScrubWindowMs, rootCmd.PersistentFlags().Lookup("scrub-window")))

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the playsync application.
var rootCmd = &cobra.Command{
	Use:   constant.Playsync,
	Short: "Audio-synchronized animation playback and scrubbing",
	Long: constant.Logo + "\n" +
		style.Italic(style.Fg(color.HiCyan)("    - Audio-synchronized animation playback and scrubbing")),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
