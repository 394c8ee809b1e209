// Package version carries build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Version is set via -ldflags at release build time.
var Version = "dev"

// Display formats the version with the target platform.
func Display() string {
	return fmt.Sprintf("warden %s on %s/%s", Version, runtime.GOOS, runtime.GOARCH)
}
