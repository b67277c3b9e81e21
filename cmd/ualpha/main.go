// Package main provides ualpha - Krippendorff's unitized alpha for annotation studies.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/config"
	"github.com/dkpro/dkpro-statistics-sub001/pkg/notify"
	"github.com/dkpro/dkpro-statistics-sub001/pkg/progress"
	"github.com/dkpro/dkpro-statistics-sub001/pkg/report"
	"github.com/dkpro/dkpro-statistics-sub001/pkg/study"
	"github.com/dkpro/dkpro-statistics-sub001/pkg/watch"
)

// opts holds all command-line options.
type opts struct {
	Categories []string `short:"c" long:"category" description:"restrict the report to a category (repeatable)"`
	Precision  int      `short:"p" long:"precision" default:"-1" description:"decimals in the report (default from config)"`
	Format     string   `short:"f" long:"format" choice:"text" choice:"markdown" choice:"json" description:"output format (default from config)"`
	Watch      bool     `short:"w" long:"watch" description:"re-run when a study file changes"`
	Debug      bool     `short:"d" long:"debug" description:"enable debug logging"`
	NoColor    bool     `long:"no-color" description:"disable color output"`
	ConfigDir  string   `long:"config-dir" env:"UALPHA_CONFIG_DIR" description:"global configuration directory"`
	Version    bool     `short:"v" long:"version" description:"print version and exit"`

	Files []string `positional-arg-name:"study-file" description:"study files to analyze"`
}

var revision = "unknown"

func main() {
	var o opts
	parser := flags.NewParser(&o, flags.Default)
	parser.Usage = "[OPTIONS] study-file..."

	args, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if o.Version {
		fmt.Printf("ualpha %s\n", revision)
		os.Exit(0)
	}
	o.Files = args

	// setup context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o opts, stdout io.Writer) error {
	if len(o.Files) == 0 {
		return errors.New("no study files given")
	}

	cfg, err := config.Load(o.ConfigDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	precision := cfg.Precision
	if o.Precision >= 0 {
		if o.Precision > 15 {
			return fmt.Errorf("precision must be in [0,15], got %d", o.Precision)
		}
		precision = o.Precision
	}
	format := cfg.OutputFormat
	if o.Format != "" {
		format = o.Format
	}

	colors := progress.NewColors(cfg.Colors)
	log, err := progress.NewLogger(progress.Config{LogFile: cfg.LogFile, Debug: o.Debug, NoColor: o.NoColor}, colors)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Close()
	log.Debug("ualpha %s, config %s", revision, cfg.ConfigDir())

	cfg.Precision = precision
	notifier, err := notify.New(cfg, log)
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}

	a := &analyzer{
		out:        stdout,
		log:        log,
		colors:     colors,
		notifier:   notifier,
		categories: o.Categories,
		precision:  precision,
		format:     format,
		noColor:    o.NoColor,
	}

	if !o.Watch {
		return a.analyze(ctx, o.Files)
	}

	restore := hideInterruptEcho()
	defer restore()

	w, err := watch.New(o.Files, time.Duration(cfg.WatchDebounceMs)*time.Millisecond, log)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	log.Print("watching %d study file(s), press Ctrl+C to stop", len(w.Paths()))
	err = w.Run(ctx, func(ctx context.Context, changed []string) {
		if aErr := a.analyze(ctx, changed); aErr != nil {
			log.Error("%v", aErr)
		}
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	log.Print("stopped after %s", log.Elapsed())
	return nil
}

// analyzer runs studies through the agreement pipeline and renders the results.
type analyzer struct {
	out        io.Writer
	log        *progress.Logger
	colors     *progress.Colors
	notifier   *notify.Service
	categories []string
	precision  int
	format     string
	noColor    bool
}

// analyze computes and renders every study file. a failing file does not stop the others;
// all failures are returned joined.
func (a *analyzer) analyze(ctx context.Context, files []string) error {
	var results []report.Result
	var errs []error

	for _, file := range files {
		start := time.Now()
		res, err := a.analyzeFile(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
			a.notifier.Send(ctx, notify.Outcome{File: file, Err: err, Duration: time.Since(start)})
			continue
		}

		for _, row := range res.Categories {
			if row.Error != "" {
				a.log.Warn("%s: %s", file, row.Error)
			}
		}
		results = append(results, res)
		a.notifier.Send(ctx, notify.Outcome{File: file, Report: &res, Duration: time.Since(start)})
	}

	if len(results) > 0 {
		if err := a.render(results); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// analyzeFile loads one study, builds its closed continuum model and computes the report.
func (a *analyzer) analyzeFile(file string) (report.Result, error) {
	s, err := study.Load(file)
	if err != nil {
		return report.Result{}, fmt.Errorf("load study: %w", err)
	}
	model, err := s.Build()
	if err != nil {
		return report.Result{}, fmt.Errorf("build study %s: %w", s.Name, err)
	}
	a.log.Debug("study %s: %d annotators, %d units, categories %s", s.Name, len(s.Annotators), len(s.Units),
		strings.Join(s.Categories(), ","))

	res, err := report.Compute(s.Name, model, a.categories)
	if err != nil {
		return report.Result{}, fmt.Errorf("study %s: %w", s.Name, err)
	}
	return res, nil
}

func (a *analyzer) render(results []report.Result) error {
	switch a.format {
	case config.FormatJSON:
		return report.JSON(a.out, results, a.precision)
	case config.FormatMarkdown:
		parts := make([]string, 0, len(results))
		for _, r := range results {
			parts = append(parts, report.Markdown(r, a.precision))
		}
		md := strings.Join(parts, "\n")
		rendered, err := report.RenderMarkdown(md, a.noColor || !progress.IsTerminal(), progress.TerminalWidth())
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if _, err := io.WriteString(a.out, rendered); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	default:
		for i, r := range results {
			if i > 0 {
				if _, err := io.WriteString(a.out, "\n"); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}
			if err := report.Text(a.out, r, a.colors, a.precision); err != nil {
				return err
			}
		}
		return nil
	}
}
