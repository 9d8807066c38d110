// Package cmd implements the playsync command-line interface.
package cmd

import (
	"encoding/json"
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/playsync/playsync/check"
	"github.com/playsync/playsync/color"
	"github.com/playsync/playsync/constant"
	"github.com/playsync/playsync/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Display only the version string without metadata")
	versionCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
}

// buildInfo describes the running binary.
type buildInfo struct {
	App        string `json:"app"`
	Version    string `json:"version"`
	Revision   string `json:"revision"`
	BuiltAt    string `json:"built_at"`
	BuiltBy    string `json:"built_by"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Policy     string `json:"policy"`
	FrameRate  int    `json:"default_frame_rate"`
	SampleRate int    `json:"sample_rate"`
}

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Build Date" }}      {{ bold .BuiltAt }}
  {{ faint "Built By" }}        {{ bold .BuiltBy }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}
  {{ faint "Engine Policy" }}   {{ bold .Policy }}
  {{ faint "Frame Rate" }}      {{ bold .FrameRate }} fps
  {{ faint "Sample Rate" }}     {{ bold .SampleRate }} Hz
`))

// versionCmd displays application version and build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version, build and engine metadata",
	Long:  "Display the current application version, build revision, platform and the engine build policy.",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := buildInfo{
			App:        constant.Playsync,
			Version:    constant.Version,
			Revision:   constant.Revision,
			BuiltAt:    strings.TrimSpace(constant.BuiltAt),
			BuiltBy:    constant.BuiltBy,
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Policy:     check.Build().String(),
			FrameRate:  constant.DefaultFrameRate,
			SampleRate: constant.DefaultSampleRate,
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(info))
			return
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
