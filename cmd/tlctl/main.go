// main.go - Command line client for the reporting API
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/karloscodes/cartridge"

	"trafficlens/internal"
	"trafficlens/internal/config"
	"trafficlens/internal/timeframe"
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&VisitsCommand{},
	&ReferrersCommand{},
	&PagesCommand{},
	&RealtimeCommand{},
	&ResolveCommand{},
	&HelpCommand{},
}

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	var app *internal.Application
	if _, isHelp := cmd.(*HelpCommand); !isHelp {
		var err error
		app, err = newApp(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize app: %v", err)
		}
	}

	if err := cmd.Execute(ctx, app, args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

// newApp builds the application without starting the HTTP server. Only errors
// are logged unless LOG_LEVEL says otherwise, so command output stays readable.
func newApp(ctx context.Context) (*internal.Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logCfg := cartridge.LogConfigFromProvider(cfg)
	logCfg.Level = string(config.LogLevelError)
	logger := cartridge.NewLogger(cfg, logCfg)
	client, err := internal.NewReportClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return internal.NewAppWithClient(cfg, logger, client), nil
}

// VisitsCommand prints daily page views for one or more paths
type VisitsCommand struct{}

func (c *VisitsCommand) Name() string        { return "visits" }
func (c *VisitsCommand) Description() string { return "Shows daily page views for the given paths" }

func (c *VisitsCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs, format := newFlagSet(c.Name())
	days := fs.Int("days", app.Config.DefaultNumberOfDays, "number of full days before today")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: %s [-days N] <path> [path...]", c.Name())
	}

	series, err := app.Analytics.GetMultiplePageVisits(ctx, fs.Args(), *days)
	if err != nil {
		return err
	}

	return newPrinter(os.Stdout, *format).printSeries(series, app.Analytics.Location())
}

// ReferrersCommand prints the top referrers
type ReferrersCommand struct{}

func (c *ReferrersCommand) Name() string        { return "referrers" }
func (c *ReferrersCommand) Description() string { return "Shows the referrers with the most page views" }

func (c *ReferrersCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	p, err := parsePeriodFlags(c.Name(), app, args)
	if err != nil {
		return err
	}

	records, err := app.Analytics.GetTopReferrersForPeriod(ctx, p.dateRange, p.limit)
	if err != nil {
		return err
	}

	return newPrinter(os.Stdout, p.format).printRanked("REFERRER", records)
}

// PagesCommand prints the most visited pages
type PagesCommand struct{}

func (c *PagesCommand) Name() string        { return "pages" }
func (c *PagesCommand) Description() string { return "Shows the most visited pages" }

func (c *PagesCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	p, err := parsePeriodFlags(c.Name(), app, args)
	if err != nil {
		return err
	}

	records, err := app.Analytics.GetMostVisitedPagesForPeriod(ctx, p.dateRange, p.limit)
	if err != nil {
		return err
	}

	return newPrinter(os.Stdout, p.format).printRanked("PAGE", records)
}

// RealtimeCommand forwards a realtime query
type RealtimeCommand struct{}

func (c *RealtimeCommand) Name() string        { return "realtime" }
func (c *RealtimeCommand) Description() string { return "Runs a realtime query and prints its rows" }

func (c *RealtimeCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs, format := newFlagSet(c.Name())
	metricNames := fs.String("metric", "activeUsers", "comma separated metric names")
	dimensionNames := fs.String("dimension", "", "comma separated dimension names")
	limit := fs.Int("limit", app.Config.DefaultMaxResults, "maximum number of rows")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dimensions := splitList(*dimensionNames)
	metrics := splitList(*metricNames)
	resp, err := app.Analytics.PerformRealTimeQuery(ctx, metrics, dimensions, *limit)
	if err != nil {
		return err
	}

	return newPrinter(os.Stdout, *format).printRows(append(dimensions, metrics...), resp.Rows)
}

// ResolveCommand looks up the site ID serving a URL
type ResolveCommand struct{}

func (c *ResolveCommand) Name() string        { return "resolve" }
func (c *ResolveCommand) Description() string { return "Finds the site ID serving a URL" }

func (c *ResolveCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s <url>", c.Name())
	}

	siteID, err := app.Analytics.GetSiteIDByURL(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println(siteID)
	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

// Name returns the command name
func (c *HelpCommand) Name() string {
	return "help"
}

// Description returns the command description
func (c *HelpCommand) Description() string {
	return "Shows usage information"
}

// Execute implements the help command
func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	printUsage()
	return nil
}

type periodFlags struct {
	dateRange timeframe.DateRange
	limit     int
	format    string
}

// parsePeriodFlags reads -from/-to or -days plus -limit for the ranked reports.
func parsePeriodFlags(name string, app *internal.Application, args []string) (periodFlags, error) {
	fs, format := newFlagSet(name)
	days := fs.Int("days", app.Config.DefaultNumberOfDays, "number of full days before today")
	from := fs.String("from", "", "first day, YYYY-MM-DD")
	to := fs.String("to", "", "last day, YYYY-MM-DD")
	limit := fs.Int("limit", app.Config.DefaultMaxResults, "maximum number of entries")
	if err := fs.Parse(args); err != nil {
		return periodFlags{}, err
	}

	p := periodFlags{limit: *limit, format: *format}
	if *from == "" && *to == "" {
		p.dateRange = app.Analytics.CalculateRange(*days)
		return p, nil
	}

	r, err := timeframe.ParseDateRange(*from, *to, app.Analytics.Location())
	if err != nil {
		return periodFlags{}, err
	}
	p.dateRange = r
	return p, nil
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	format := fs.String("format", defaultFormat(), "output format: table, json or yaml")
	return fs, format
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Helper functions

// parseArgs parses the command name and arguments
func parseArgs() (string, []string) {
	args := flag.Args()
	if len(args) == 0 {
		return "help", []string{}
	}
	return args[0], args[1:]
}

// findCommand finds a command by name
func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: tlctl [command] [flags] [args...]")
	fmt.Println("Available commands:")
	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	printUsage()
	os.Exit(1)
}
