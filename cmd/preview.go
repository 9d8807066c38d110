// Package cmd implements the playsync command-line interface.
package cmd

import (
	"github.com/playsync/playsync/preview"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringP("media", "m", "", "WAV file to attach to the preview canvas")
}

// previewCmd opens the interactive terminal preview.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Play and scrub a canvas interactively in the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		options := preview.Options{
			Media: lo.Must(cmd.Flags().GetString("media")),
		}
		handleErr(preview.Run(&options))
	},
}
