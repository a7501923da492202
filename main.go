package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/termscan/internal/cachecmd"
	"github.com/dtnitsch/termscan/internal/scan"
	"github.com/dtnitsch/termscan/internal/serve"
)

func main() {
	app := &cli.App{
		Name:  "termscan",
		Usage: "find terms-of-service content in web pages and summarize its risks",
		Commands: []*cli.Command{
			{
				Name:   "scan",
				Usage:  "fetch pages, detect terms content and analyze it",
				Action: scan.ScanAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "urls",
						Usage:    "comma-separated list of URLs to scan",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "lang",
						Usage: "report language code (en, hi, ta) or 'auto'",
					},
					&cli.StringFlag{
						Name:  "config",
						Value: "termscan.yaml",
						Usage: "path to the YAML config file",
					},
					&cli.StringFlag{
						Name:  "cache-dir",
						Value: ".termscan-cache",
						Usage: "directory for the raw-HTML fetch cache",
					},
					&cli.StringFlag{
						Name:  "max-age",
						Value: "1h",
						Usage: "maximum age of cached HTML before refetching",
					},
					&cli.BoolFlag{
						Name:  "force-fetch",
						Usage: "ignore cached HTML and refetch every page",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "only log errors",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "expose detect/analyze endpoints over HTTP",
				Action: serve.ServeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address (overrides config)",
					},
					&cli.StringFlag{
						Name:  "config",
						Value: "termscan.yaml",
						Usage: "path to the YAML config file",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "only log errors",
					},
				},
			},
			{
				Name:  "cache",
				Usage: "result cache maintenance",
				Subcommands: []*cli.Command{
					{
						Name:   "evict",
						Usage:  "delete entries older than the 24h TTL",
						Action: cachecmd.EvictAction,
						Flags:  cacheFlags(),
					},
					{
						Name:   "stats",
						Usage:  "show entry counts",
						Action: cachecmd.StatsAction,
						Flags:  cacheFlags(),
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func cacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: "termscan.yaml",
			Usage: "path to the YAML config file",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "only log errors",
		},
	}
}
