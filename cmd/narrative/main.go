// Package main provides a CLI that audits the narrative content.
package main

import (
	narrativecmd "github.com/louisbranch/theorem-trail/internal/cmd/narrative"
	entrypoint "github.com/louisbranch/theorem-trail/internal/platform/cmd"
)

func main() {
	entrypoint.Main(narrativecmd.ParseConfig, narrativecmd.Run)
}
