// Package version carries the portfolio API's build metadata. Release builds
// set the variables with -ldflags "-X portfolio/internal/version.Version=...".
package version

import "strings"

const defaultSourceRepo = "https://github.com/melvinprince/portfolio"

var (
	Version    = "dev"
	Commit     = "unknown"
	BuildTime  = ""
	SourceRepo = defaultSourceRepo
)

// Info is the build block reported by /health/ready.
type Info struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildTime  string `json:"buildTime,omitempty"`
	SourceRepo string `json:"sourceRepo"`
}

// Current trims the linker-set values and fills blanks left by plain
// `go build` runs.
func Current() Info {
	out := Info{
		Version:    strings.TrimSpace(Version),
		Commit:     strings.TrimSpace(Commit),
		BuildTime:  strings.TrimSpace(BuildTime),
		SourceRepo: strings.TrimSpace(SourceRepo),
	}
	if out.Version == "" {
		out.Version = "dev"
	}
	if out.Commit == "" {
		out.Commit = "unknown"
	}
	if out.SourceRepo == "" {
		out.SourceRepo = defaultSourceRepo
	}
	return out
}
