// Package settings provides build metadata, per-run settings, and context
// helpers used across the kvtree CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "kvtree"

// DefaultBuildVersion is reported when no version was set at build time.
const DefaultBuildVersion = "v0.0.0-nightly"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: DefaultBuildVersion,
	BuildTime:    "unknown",
}

// InputSettings describes where the document being rendered comes from.
type InputSettings struct {
	FromAPI   bool
	FromCli   bool
	FromStdin bool
	Path      string
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds settings for a single execution: logging, input source, output
// format and error behaviour.
type Run struct {
	MinLogLevel int8
	Input       InputSettings
	Output      string
	Interactive bool
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults for a CLI run: info logging, tree
// output, colors on, exit on error.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Input: InputSettings{
			FromAPI: false,
			FromCli: true,
		},
		Output:      "tree",
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}

// Source returns a short description of the input for logs.
func (r *Run) Source() string {
	switch {
	case r.Input.FromStdin:
		return "stdin"
	case r.Input.Path != "":
		return r.Input.Path
	case r.Input.FromAPI:
		return "api"
	default:
		return "none"
	}
}
