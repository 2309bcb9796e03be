package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvtree/pkg/settings"
)

// versionData describes the running binary.
type versionData struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	BuildOS   string `json:"buildOS"`
	BuildArch string `json:"buildArch"`
}

func buildVersionData() versionData {
	info := settings.VersionInformation
	data := versionData{
		Name:      settings.CliBinaryName,
		Version:   info.BuildVersion,
		Commit:    info.Commit,
		BuildTime: info.BuildTime,
		GoVersion: runtime.Version(),
		BuildOS:   runtime.GOOS,
		BuildArch: runtime.GOARCH,
	}
	bi, ok := rdebug.ReadBuildInfo()
	if !ok {
		return data
	}
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" && info.BuildVersion == settings.DefaultBuildVersion {
		data.Version = bi.Main.Version
	}
	if bi.GoVersion != "" {
		data.GoVersion = bi.GoVersion
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 && data.Commit == "unknown" {
			data.Commit = s.Value[:7]
		}
	}
	return data
}

func versionString() string {
	d := buildVersionData()
	return fmt.Sprintf("%s %s (commit %s, %s)", d.Name, d.Version, d.Commit, d.GoVersion)
}

func newVersionCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print kvtree version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case "", "text":
				return writeLine(cmd.OutOrStdout(), versionString())
			case "json":
				b, err := json.MarshalIndent(buildVersionData(), "", "  ")
				if err != nil {
					return err
				}
				return writeLine(cmd.OutOrStdout(), string(b))
			default:
				return fmt.Errorf("invalid version output %q: valid values are text, json", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json")
	return cmd
}
