package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/huntdesk/internal/app"
	"github.com/myrjola/huntdesk/internal/config"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/logging"
	"github.com/spf13/cobra"
)

// cli carries the services shared by the commands. They are opened before every command.
type cli struct {
	root      *cobra.Command
	lookupEnv func(string) (string, bool)
	logger    *slog.Logger
	services  *app.Services
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.lookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if c.services, err = app.New(cmd.Context(), cfg, c.logger); err != nil {
		return errors.Wrap(err, "create services")
	}
	return nil
}

// execute runs the command selected by the arguments and closes the services even when the command fails.
func (c *cli) execute(ctx context.Context) error {
	err := c.root.ExecuteContext(ctx)
	if c.services != nil {
		err = errors.Join(err, errors.Wrap(c.services.Close(), "close services"))
		c.services = nil
	}
	return err
}

func newCLI(lookupEnv func(string) (string, bool), logSink io.Writer) *cli {
	c := &cli{
		root:      nil,
		lookupEnv: lookupEnv,
		logger: slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
			AddSource:   false,
			Level:       slog.LevelInfo,
			ReplaceAttr: nil,
		}))),
		services: nil,
	}
	c.root = &cobra.Command{
		Use:               "huntdesk-cli",
		Short:             "Run hunts and generate playbooks from the command line",
		Long:              `Command line utilities for Huntdesk, the business development hunt tracker.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
	}
	c.root.AddGroup(huntGroup, playbookGroup)
	c.root.AddCommand(c.huntCmd(), c.huntsCmd(), c.playbookCmd())
	return c
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newCLI(os.LookupEnv, os.Stderr).execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
