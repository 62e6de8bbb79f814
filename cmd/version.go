package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/tranvictor/kredits/ui"
)

const (
	VERSION string = "0.1.0"
)

// buildRows describes the running binary. Module and VCS details are only
// there when the binary was built from a module checkout.
func buildRows(info *debug.BuildInfo, ok bool) [][2]string {
	rows := [][2]string{{"Version", VERSION}}
	if !ok || info == nil {
		return rows
	}
	rows = append(rows, [2]string{"Go", info.GoVersion})
	if v := info.Main.Version; v != "" && v != "(devel)" {
		rows = append(rows, [2]string{"Module", fmt.Sprintf("%s %s", info.Main.Path, v)})
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rows = append(rows, [2]string{"Commit", s.Value})
		case "vcs.time":
			rows = append(rows, [2]string{"Built", s.Value})
		case "vcs.modified":
			if s.Value == "true" {
				rows = append(rows, [2]string{"Dirty", "yes"})
			}
		}
	}
	return rows
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show kredits version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		ui.NewTerminalOutput().KeyValue(buildRows(debug.ReadBuildInfo()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
