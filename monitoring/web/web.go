// Package web includes the static dashboard of the monitoring server.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"runtime"
	"strings"
)

//go:embed dist/*
var staticAssets embed.FS

// GetAssets returns the dashboard files. In development mode the files are
// served from the source tree so that they can be edited without rebuilding.
func GetAssets() http.FileSystem {
	if isDevelopmentMode() {
		_, thisFile, _, ok := runtime.Caller(0)
		if !ok {
			panic("error getting path")
		}

		assetPath := path.Join(path.Dir(thisFile), "dist")

		fmt.Fprintf(os.Stderr,
			"monitor development mode, serving assets from %s\n", assetPath)

		return http.Dir(assetPath)
	}

	subFS, err := fs.Sub(staticAssets, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(subFS)
}

// isDevelopmentMode returns true if MEMSIM_MONITOR_DEV is true or 1.
func isDevelopmentMode() bool {
	v, ok := os.LookupEnv("MEMSIM_MONITOR_DEV")
	if !ok {
		return false
	}

	return strings.ToLower(v) == "true" || v == "1"
}
