package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/concierge/internal/usecase/ingest"
	"github.com/kailas-cloud/concierge/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "concierge-indexer",
		Usage:   "Build and query the concierge vector collections",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment whose config/<env>.yaml is loaded",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Explicit config file path (overrides --env lookup)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Clean, link, embed and index business and event listings",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "businesses",
						Aliases: []string{"b"},
						Usage:   "Business listings file (.csv, .xlsx or .parquet)",
					},
					&cli.StringFlag{
						Name:    "events",
						Aliases: []string{"e"},
						Usage:   "Event listings file (.csv, .xlsx or .parquet)",
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Collection layout: combined or split",
						Value: string(ingest.ModeCombined),
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Documents per embedding request (default from config)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent embedding batches (default from config)",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question against the indexed collections",
				ArgsUsage: "<query...>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Restrict results: all, business or event",
						Value:   "all",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Report database, embedding and collection health",
				Action: statusCommand,
			},
		},
	}
}
