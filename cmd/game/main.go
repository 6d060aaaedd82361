package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomz197/flak/internal/cli"
	"github.com/tomz197/flak/internal/client"
	"github.com/tomz197/flak/internal/report"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flak",
		Short: "Terminal anti-aircraft defence",
		Long: `Flak is a terminal arcade game: hostiles descend towards the ground
and you shoot them down from a battery of reloading launchers. Destroy at
least half of them to win.`,
		SilenceUsage: true,
		RunE:         run,
	}
	cli.AddFlags(cmd)
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	v, err := cli.NewViper(cmd)
	if err != nil {
		return err
	}
	settings := cli.Load(v)

	profiles, err := settings.LoadProfiles()
	if err != nil {
		return err
	}
	if settings.Difficulty != "" {
		if _, err := profiles.Lookup(settings.Difficulty); err != nil {
			return err
		}
	}

	// The terminal belongs to the renderer, so logs go to a file or nowhere.
	logger, closeLog, err := settings.OpenLog(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	restore := func() { _ = term.Restore(fd, oldState) }
	defer restore()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(bufio.NewReader(os.Stdin), os.Stdout, client.Options{
		Profiles:   profiles,
		Difficulty: settings.Difficulty,
		Logger:     logger,
		Seed:       settings.Seed,
	})
	res, err := c.Run(ctx)
	restore()
	if err != nil {
		return fmt.Errorf("game error: %w", err)
	}

	if res != nil {
		return report.NewPrinter(os.Stdout, settings.NoColor).Print(report.FromResult(*res))
	}
	return nil
}
