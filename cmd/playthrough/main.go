// Package main provides a CLI for running Lua playthrough scripts.
package main

import (
	playthroughcmd "github.com/louisbranch/theorem-trail/internal/cmd/playthrough"
	entrypoint "github.com/louisbranch/theorem-trail/internal/platform/cmd"
)

func main() {
	entrypoint.Main(playthroughcmd.ParseConfig, playthroughcmd.Run)
}
