package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

// Applicator defines the interface for the core application logic.
// This allows the CLI to be tested independently of the main app implementation.
type Applicator interface {
	Sync(ctx context.Context, cfgPath, since string) error
	Identities(ctx context.Context, cfgPath string) error
	Wipe(ctx context.Context, cfgPath string) error
}

// BuildCLI creates the full CLI command structure for the application.
// It injects the core application logic (the Applicator) into the command actions.
func BuildCLI(app Applicator) *cli.Command {
	// Define flags that are common across multiple commands.
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.yaml",
		Usage:   "path to the configuration file",
	}

	sinceFlag := &cli.StringFlag{
		Name:    "since",
		Usage:   "only fetch records changed since this date or timestamp ('2006-01-02' or '2006-01-02T15:04:05'); defaults to the configured sync start date",
		Aliases: []string{"s"},
	}

	// Define all application commands.
	syncCmd := &cli.Command{
		Name:  "sync",
		Usage: "Fetch all configured entity types and upsert them locally",
		Flags: []cli.Flag{configFlag, sinceFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			since, err := parseSinceFlag(c.String("since"))
			if err != nil {
				return err
			}
			return app.Sync(ctx, c.String("config"), since)
		},
	}

	identitiesCmd := &cli.Command{
		Name:    "identities",
		Usage:   "List the identities selectable for the configured account",
		Aliases: []string{"ids"},
		Flags:   []cli.Flag{configFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.Identities(ctx, c.String("config"))
		},
	}

	wipeCmd := &cli.Command{
		Name:  "wipe",
		Usage: "Delete the local database file",
		Flags: []cli.Flag{configFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.Wipe(ctx, c.String("config"))
		},
	}

	// Assemble the root command.
	rootCmd := &cli.Command{
		Name:     "finagosync",
		Usage:    "Incrementally sync accounting data into a local SQLite database",
		Commands: []*cli.Command{syncCmd, identitiesCmd, wipeCmd},
	}

	return rootCmd
}

// parseSinceFlag validates the --since value, which may be a date or a
// timestamp. An empty value is allowed and means "use the configured sync
// start date".
func parseSinceFlag(since string) (string, error) {
	if since == "" {
		return "", nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05"} {
		if _, err := time.Parse(layout, since); err == nil {
			return since, nil
		}
	}
	return "", fmt.Errorf("invalid --since value %q: use '2006-01-02' or '2006-01-02T15:04:05'", since)
}
