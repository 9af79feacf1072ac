// skyeadmin manages the Skye catalog from the command line: list records,
// upload new videos, delete records and show storage stats.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"skyeserver/internal/admin"
	"skyeserver/internal/blob"
	"skyeserver/internal/client"
	"skyeserver/internal/config"
	"skyeserver/internal/logging"
	"skyeserver/internal/media"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}

func run(args []string) error {
	var configPath string
	var apiURL string

	global := pflag.NewFlagSet("skyeadmin", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.StringVarP(&configPath, "config", "c", "", "path to config file")
	global.StringVar(&apiURL, "api", "", "content API base URL (overrides config)")
	global.Usage = func() { printUsage(global) }
	if err := global.Parse(args); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(global)
		return pflag.ErrHelp
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.Admin.APIURL = apiURL
	}

	logger, closer, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closer.Close()

	svc := admin.NewService(
		client.New(cfg.Admin.APIURL, nil),
		blob.NewUploader(nil),
		media.NewMetadataExtractor(logger),
		media.NewThumbnailGenerator(os.TempDir(), logger),
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "list", "ls":
		return runList(ctx, svc, cmdArgs)
	case "add":
		return runAdd(ctx, svc, logger, cmdArgs)
	case "delete", "rm":
		return runDelete(ctx, svc, os.Stdin, cmdArgs)
	case "stats":
		return runStats(ctx, svc, cmdArgs)
	case "help":
		printUsage(global)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try \"skyeadmin help\")", cmd)
	}
}

func runList(ctx context.Context, svc *admin.Service, args []string) error {
	flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}

	items, err := svc.List(ctx)
	if err != nil {
		return fmt.Errorf("Could not load content: %w", err)
	}
	return admin.RenderContent(os.Stdout, items)
}

func runAdd(ctx context.Context, svc *admin.Service, logger zerolog.Logger, args []string) error {
	var req admin.AddRequest
	flags := pflag.NewFlagSet("add", pflag.ContinueOnError)
	flags.StringVarP(&req.Title, "title", "t", "", "title (required)")
	flags.StringVar(&req.Category, "category", "", "category, e.g. movies (required)")
	flags.StringVarP(&req.Description, "description", "d", "", "description")
	flags.BoolVar(&req.Featured, "featured", false, "show in the hero carousel")
	flags.StringVar(&req.Thumbnail, "thumbnail", "", "thumbnail URL (skips thumbnail generation)")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: skyeadmin add --title TITLE --category CATEGORY [flags] FILE...")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	req.Files = flags.Args()

	for _, path := range req.Files {
		if info, err := os.Stat(path); err == nil {
			fmt.Printf("%s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
		}
	}

	items, err := svc.Add(ctx, req, newProgressPrinter(os.Stdout).report)
	for _, item := range items {
		fmt.Printf("Added %q (%s)\n", item.Title, item.ID)
	}
	if err != nil {
		if len(items) > 0 {
			logger.Warn().Int("created", len(items)).Msg("add stopped part way")
		}
		return fmt.Errorf("Upload failed: %w", err)
	}
	return nil
}

func runDelete(ctx context.Context, svc *admin.Service, in io.Reader, args []string) error {
	var yes bool
	flags := pflag.NewFlagSet("delete", pflag.ContinueOnError)
	flags.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return &admin.ValidationError{Message: "Usage: skyeadmin delete [--yes] ID"}
	}
	id := flags.Arg(0)

	item, err := svc.Get(ctx, id)
	if err != nil {
		if client.IsNotFound(err) {
			return fmt.Errorf("Not found: no content with id %s", id)
		}
		return fmt.Errorf("Delete failed: %w", err)
	}

	if !yes && !confirm(in, os.Stdout, fmt.Sprintf("Delete %q (%s)?", item.Title, id)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := svc.Delete(ctx, id); err != nil {
		if client.IsNotFound(err) {
			return fmt.Errorf("Not found: no content with id %s", id)
		}
		return fmt.Errorf("Delete failed: %w", err)
	}
	fmt.Println("Content deleted successfully.")
	return nil
}

func runStats(ctx context.Context, svc *admin.Service, args []string) error {
	flags := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("Could not load stats: %w", err)
	}
	return admin.RenderStats(os.Stdout, stats)
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// progressPrinter prints a line per object each time its upload crosses
// another quarter. Uploads report from several goroutines.
type progressPrinter struct {
	out  io.Writer
	mu   sync.Mutex
	last map[string]int
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, last: make(map[string]int)}
}

func (p *progressPrinter) report(name string, fraction float64) {
	step := int(fraction * 4)

	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.last[name]; ok && step <= prev {
		return
	}
	p.last[name] = step
	fmt.Fprintf(p.out, "  %s %3.0f%%\n", name, fraction*100)
}

func describe(err error) string {
	var verr *admin.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return strings.Replace(err.Error(), apiErr.Error(), apiErr.Message, 1)
	}
	return err.Error()
}

func printUsage(flags *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Skye admin: manage the video catalog.

Usage:
  skyeadmin [flags] <command> [args]

Commands:
  list                      list all content
  add --title T --category C [--description D] [--featured] [--thumbnail URL] FILE...
                            upload videos and create records
  delete [--yes] ID         delete a record
  stats                     show total videos and storage used

Flags:
`)
	flags.SetOutput(os.Stderr)
	flags.PrintDefaults()
}
