// Package cmd implements the playsync command-line interface.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/playsync/playsync/color"
	"github.com/playsync/playsync/filesystem"
	"github.com/playsync/playsync/style"
	"github.com/playsync/playsync/util"
	"github.com/playsync/playsync/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// location is a resolvable playsync path and the flag that prints it alone.
type location struct {
	name     string
	path     func() string
	argLong  string
	argShort mo.Option[string]
	hidden   bool
}

var locations = []location{
	{"Config", where.Config, "config", mo.Some("c"), false},
	{"Scripts", where.Scripts, "scripts", mo.Some("s"), false},
	{"Logs", where.Logs, "logs", mo.Some("l"), false},
	{"Probe cache", where.ProbeCache, "probes", mo.Some("p"), false},
	{"Cache", where.Cache, "cache", mo.None[string](), true},
	{"Temp", where.Temp, "temp", mo.None[string](), true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, l := range locations {
		if short, ok := l.argShort.Get(); ok {
			whereCmd.Flags().BoolP(l.argLong, short, false, l.name+" path")
		} else {
			whereCmd.Flags().Bool(l.argLong, false, l.name+" path")
		}

		if l.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(l.argLong))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(locations, func(l location, _ int) string {
		return l.argLong
	})...)

	whereCmd.SetOut(os.Stdout)
}

// scenarioCount counts the Lua scripts that simulate can run by bare name.
func scenarioCount() int {
	matches, err := afero.Glob(filesystem.API(), filepath.Join(where.Scripts(), "*.lua"))
	if err != nil {
		return 0
	}
	return len(matches)
}

// whereCmd displays the filesystem paths playsync reads and writes.
var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Display the filesystem paths used by playsync",
	Run: func(cmd *cobra.Command, args []string) {
		if l, ok := lo.Find(locations, func(l location) bool {
			return lo.Must(cmd.Flags().GetBool(l.argLong))
		}); ok {
			cmd.Println(l.path())
			return
		}

		header := func(s string) string { return style.Bold(style.Fg(color.HiPurple)(s)) }
		visible := lo.Reject(locations, func(l location, _ int) bool { return l.hidden })

		for i, l := range visible {
			cmd.Printf("%s %s\n", header(l.name+"?"), style.Fg(color.Yellow)("--"+l.argLong))
			cmd.Print(l.path())
			if l.argLong == "scripts" {
				cmd.Print(style.Faint("  (" + util.Quantify(scenarioCount(), "scenario", "scenarios") + ")"))
			}
			cmd.Println()

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
