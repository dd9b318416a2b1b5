package main

import (
	"os"

	"github.com/andresuchdata/bestandsanalyse/internal/sheet"
	"github.com/andresuchdata/bestandsanalyse/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("bestand failed")
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "sheet",
			Usage: "Worksheet to analyze (default: first sheet)",
		},
		&cli.StringFlag{
			Name:  "object",
			Usage: "Read the workbook from object storage under this key",
		},
		&cli.StringFlag{
			Name:  "drive-file-id",
			Usage: "Read the workbook from Google Drive",
		},
		&cli.Int64Flag{
			Name:    "max-bytes",
			Usage:   "Largest accepted workbook in bytes",
			Value:   sheet.DefaultMaxBytes,
			EnvVars: []string{"APP_MAX_UPLOAD_BYTES"},
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Write to this file instead of stdout",
		},
		&cli.StringFlag{
			Name:  "upload-key",
			Usage: "Also upload the output to object storage under this key",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "bestand",
		Usage:     "Analyze inventory movement exports",
		ArgsUsage: "[workbook]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "report",
				Usage:     "Print the full analysis as JSON",
				ArgsUsage: "[workbook]",
				Flags:     append(sourceFlags(), outputFlags()...),
				Action:    runReport,
			},
			{
				Name:      "article",
				Usage:     "Print the movement history of one article",
				ArgsUsage: "[workbook]",
				Flags: append(sourceFlags(), append(outputFlags(),
					&cli.StringFlag{
						Name:     "item",
						Usage:    "Article number",
						Required: true,
					},
				)...),
				Action: runArticle,
			},
			{
				Name:      "export",
				Usage:     "Export a report section as JSON or CSV",
				ArgsUsage: "[workbook]",
				Flags: append(sourceFlags(), append(outputFlags(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "json or csv",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:  "section",
						Usage: "overview, byArticle, byMovementType, byUser, byDate, writeOffs, topWriteOffs, gains, financial or rows",
					},
				)...),
				Action: runExport,
			},
			{
				Name:      "sheets",
				Usage:     "List the worksheets of a workbook",
				ArgsUsage: "[workbook]",
				Flags:     sourceFlags(),
				Action:    runSheets,
			},
			{
				Name:  "batch",
				Usage: "Import every workbook under an object storage prefix",
				Flags: append(outputFlags(),
					&cli.StringFlag{
						Name:     "prefix",
						Usage:    "Object key prefix to scan",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "sheet",
						Usage: "Worksheet to analyze in every workbook (default: first sheet)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent imports",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the run as JSON instead of a table",
					},
				),
				Action: runBatch,
			},
			{
				Name:  "drive",
				Usage: "List importable workbooks in a Google Drive folder",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "folder",
						Usage: "Drive folder id (default: root)",
					},
				},
				Action: runDrive,
			},
		},
	}
}
