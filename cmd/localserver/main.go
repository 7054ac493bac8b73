// localserver CLI - serve a directory with the embeddable HTTP/1.1 engine
package main

import (
	"context"
	"os"

	"github.com/Raphcal/localserver/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	os.Exit(cli.Execute(context.Background(), cli.BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}, os.Args[1:]))
}
