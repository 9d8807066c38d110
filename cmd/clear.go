// Package cmd implements the playsync command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/playsync/playsync/filesystem"
	"github.com/playsync/playsync/icon"
	"github.com/playsync/playsync/style"
	"github.com/playsync/playsync/util"
	"github.com/playsync/playsync/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// clearTarget is a location whose contents can be thrown away.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"probe cache", "probes", mo.Some("p"), where.ProbeCache},
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"logs directory", "logs", mo.Some("l"), where.Logs},
	{"temp directory", "temp", mo.None[string](), where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("Clear the %s", target.name)
		if short, ok := target.argShort.Get(); ok {
			clearCmd.Flags().BoolP(target.argLong, short, false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}

	clearCmd.SetOut(os.Stdout)
}

// countFiles counts the regular files at or under path.
func countFiles(path string) int {
	var count int
	_ = afero.Walk(filesystem.API(), path, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			count++
		}
		return nil
	})
	return count
}

// clearCmd removes cached and temporary playsync artifacts.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached and temporary artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		selected := lo.Filter(clearTargets, func(t clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(t.argLong))
		})

		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, target := range selected {
			path := target.location()
			files := countFiles(path)

			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := util.Delete(path)
			erase()

			if err != nil && !os.IsNotExist(err) {
				handleErr(err)
			}

			cmd.Printf("%s %s cleared %s\n",
				icon.Get(icon.Success),
				util.Capitalize(target.name),
				style.Faint("("+util.Quantify(files, "file", "files")+")"),
			)
		}
	},
}
