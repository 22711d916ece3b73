package version

import "fmt"

// overridden at build time via -ldflags
//
//nolint:gochecknoglobals // set by linker
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

//nolint:gochecknoglobals // composed once
var FullVersion = fmt.Sprintf("%s (%s) built %s", Version, Commit, BuildDate)
