// Package cmd implements the playsync command-line interface.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/playsync/playsync/color"
	"github.com/playsync/playsync/filesystem"
	"github.com/playsync/playsync/icon"
	"github.com/playsync/playsync/key"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	probeCmd.Flags().Float64P("tolerance", "t", 0, "Frame rate tolerance, overriding "+key.MediaFpsTolerance)
	probeCmd.SetOut(os.Stdout)
}

// probeCmd reads ffprobe output and reports the reconciled frame layout.
var probeCmd = &cobra.Command{
	Use:   "probe <ffprobe.json>",
	Short: "Read ffprobe JSON output and report the reconciled frame layout",
	Long: `Read the JSON written by "ffprobe -show_streams -show_format -of json" and report
frame rate, frame count and duration, recomputing the frame rate when it disagrees with the media length.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tolerance := viper.GetFloat64(key.MediaFpsTolerance)
		if cmd.Flags().Changed("tolerance") {
			tolerance = lo.Must(cmd.Flags().GetFloat64("tolerance"))
		}

		file, err := filesystem.API().Open(args[0])
		handleErr(err)
		defer file.Close()

		info, err := media.ParseProbe(file)
		handleErr(err)
		info = media.Reconcile(info, tolerance)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(info))
			return
		}

		symbol := style.Fg(color.Green)(icon.Get(icon.Success))
		if info.Overridden {
			symbol = style.Fg(color.Yellow)(icon.Get(icon.Progress))
		}
		cmd.Println(fmt.Sprintf("%s %s", symbol, info))
	},
}
