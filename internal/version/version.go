// Package version reports the build version of the jailconf binary.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at release build time.
var jailconfVersion = "v0.1.0-dev"

type VersionInformation struct {
	Version         string
	RuntimeGOOS     string
	RuntimeGOARCH   string
	RuntimeCompiler string
}

func NewVersionInformation() VersionInformation {
	return VersionInformation{
		Version:         jailconfVersion,
		RuntimeGOOS:     runtime.GOOS,
		RuntimeGOARCH:   runtime.GOARCH,
		RuntimeCompiler: runtime.Compiler,
	}
}

func (v VersionInformation) String() string {
	return fmt.Sprintf("jailconf version=%s GOOS=%s GOARCH=%s Compiler=%s",
		v.Version, v.RuntimeGOOS, v.RuntimeGOARCH, v.RuntimeCompiler)
}
