package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	statusupdater "github.com/goliatone/go-status-updater"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatalf("status-updater: %v", err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("status-updater", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML or TOML configuration file")
	urlsPath := fs.String("urls", "-", "File holding one URL per line, or - for stdin")
	expected := fs.String("expected", "", "Status the content must currently hold")
	next := fs.String("new", "", "Status to move matching content to")
	seedPath := fs.String("seed", "", "Optional JSON or YAML fixtures loaded into the store before the run")
	asJSON := fs.Bool("json", false, "Print the run report as JSON instead of result lines")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := statusupdater.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	module, err := statusupdater.New(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if *seedPath != "" {
		if err := seedFixtures(ctx, module.Store(), *seedPath); err != nil {
			return fmt.Errorf("seed fixtures: %w", err)
		}
	}

	urls, err := readURLs(*urlsPath, stdin)
	if err != nil {
		return fmt.Errorf("read urls: %w", err)
	}

	report, lines, runErr := module.Run(ctx, statusupdater.Input{
		URLs:           urls,
		ExpectedStatus: *expected,
		NewStatus:      *next,
	})

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonOutput{Report: report, Lines: lines}); err != nil {
			return err
		}
	} else {
		for _, line := range lines {
			fmt.Fprintf(stdout, "[%s] %s\n", line.Level, line.Text)
		}
	}
	return runErr
}

type jsonOutput struct {
	Report *statusupdater.Report `json:"report,omitempty"`
	Lines  []statusupdater.Line  `json:"lines"`
}

func readURLs(path string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(path) == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
