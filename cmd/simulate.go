// Package cmd implements the playsync command-line interface.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/playsync/playsync/color"
	"github.com/playsync/playsync/filesystem"
	"github.com/playsync/playsync/icon"
	"github.com/playsync/playsync/script"
	"github.com/playsync/playsync/style"
	"github.com/playsync/playsync/util"
	"github.com/playsync/playsync/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().BoolP("json", "j", false, "Format the report as a JSON string")
	simulateCmd.SetOut(os.Stdout)

	simulateCmd.AddCommand(simulateSchemaCmd)
	simulateSchemaCmd.SetOut(os.Stdout)
}

// resolveScript accepts either a path or the bare name of a script in the scripts directory.
func resolveScript(name string) string {
	if exists, _ := filesystem.API().Exists(name); exists {
		return name
	}

	if filepath.Ext(name) != ".lua" {
		name += ".lua"
	}
	return filepath.Join(where.Scripts(), name)
}

// simulateCmd runs a Lua playback scenario against the engine.
var simulateCmd = &cobra.Command{
	Use:   "simulate <script>",
	Short: "Run a Lua playback scenario on a virtual clock",
	Long: `Run a Lua playback scenario against the engine on a virtual clock and report what it did.

Scenarios drive in-memory canvases with play(), pause(), stop(), seek(frame[, audio[, finalize]]),
mute(bool), volume(v), fps(n), range(start, end), media(path), sleep(ms), frame(), mode() and switch(name).`,
	Example: "  playsync simulate scrub.lua --json",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := resolveScript(args[0])

		erase := util.PrintErasable(fmt.Sprintf("%s Running %s...", icon.Get(icon.Progress), style.Fg(color.Purple)(util.FileStem(path))))
		report, err := script.Run(path)
		erase()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(report))
			return
		}

		printReport(cmd, report)
	},
}

func printReport(cmd *cobra.Command, report *script.Report) {
	cmd.Printf("%s %s %s\n\n", icon.Get(icon.Lua), style.Title(report.Script), style.Faint(fmt.Sprintf("%dms", report.Duration)))

	for _, step := range report.Steps {
		line := fmt.Sprintf("%6dms  %-28s %s  frame %d", step.At, step.Call, style.Mode(step.Mode), step.Frame)
		if step.Error != "" {
			line += "  " + style.Fg(color.Red)(step.Error)
		}
		cmd.Println(line)
	}

	s := report.Stats
	cmd.Println()
	cmd.Println(strings.Join([]string{
		util.Quantify(s.Transitions, "transition", "transitions"),
		util.Quantify(s.AudioPushes, "audio push", "audio pushes") + fmt.Sprintf(" (%d frames)", s.PushedAudio),
		fmt.Sprintf("%d frames shown by pull, %d coalesced", s.PullShown, s.Bridge.Coalesced),
		util.Quantify(report.Samples, "audio sample", "audio samples"),
	}, style.Faint(" · ")))

	if s.Media != nil {
		cmd.Printf("%s %s\n", style.Faint("media"), s.Media)
	}

	if s.Errors > 0 {
		cmd.Println(style.Fg(color.Red)(util.Quantify(s.Errors, "engine error", "engine errors")))
	}
}

// simulateSchemaCmd prints the JSON schema of simulation reports.
var simulateSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of simulation reports",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch name {
			case "Stats", "Shown":
				return filepath.Base(t.PkgPath()) + "." + name
			}
			return name
		}

		schema := reflector.Reflect(&script.Report{})

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(schema))
	},
}
