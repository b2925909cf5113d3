// Command coursectl drives the course platform client core from a terminal.
// Every command prints the JSON result of its call and exits non-zero when
// the call failed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/R3E-Network/courseclient/internal/api"
	"github.com/R3E-Network/courseclient/internal/cli"
	"github.com/R3E-Network/courseclient/internal/config"
	"github.com/R3E-Network/courseclient/internal/logging"
	"github.com/R3E-Network/courseclient/internal/metrics"
	"github.com/R3E-Network/courseclient/internal/state"
	"github.com/R3E-Network/courseclient/internal/tokenstore"
)

const program = "coursectl"

// env is everything a command needs.
type env struct {
	cfg     *config.Config
	logger  *logging.Logger
	tokens  tokenstore.Store
	gateway *api.Gateway
	store   *state.Store
	stdout  io.Writer
	stderr  io.Writer
	spin    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(program, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "Path to YAML configuration file")
		baseURL     = fs.String("base-url", "", "API base URL (overrides config)")
		logLevel    = fs.String("log-level", "", "Log level: debug|info|warn|error")
		logFormat   = fs.String("log-format", "", "Log format: json|text")
		metricsAddr = fs.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	)
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		usage(fs)
		return 2
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	if name == "completion" {
		shell := "bash"
		if len(rest) > 0 {
			shell = rest[0]
		}
		if err := cli.WriteCompletion(stdout, shell, program, commandNames()); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		return 0
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(fs)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	e, cleanup, err := setup(cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer cleanup()

	if cfg.Metrics.Addr != "" {
		shutdown := serveMetrics(cfg.Metrics.Addr, e.logger)
		defer shutdown()
	}

	ctx = logging.WithTraceID(ctx, logging.NewTraceID())
	out, success, err := cmd.run(ctx, e, rest)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 2
	}
	if out != nil {
		if err := cli.WriteJSON(stdout, out); err != nil {
			fmt.Fprintf(stderr, "write output: %v\n", err)
			return 1
		}
	}
	if !success {
		return 1
	}
	return 0
}

func setup(cfg *config.Config, stdout, stderr io.Writer) (*env, func(), error) {
	logger := logging.New(program, cfg.Log.Level, cfg.Log.Format)
	logger.SetOutput(stderr)

	tokens, err := tokenstore.Open(cfg.Token, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open token store: %w", err)
	}
	cleanup := func() {
		if c, ok := tokens.(io.Closer); ok {
			_ = c.Close()
		}
	}

	gateway, err := api.New(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Tokens:    tokens,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		UserAgent: cfg.API.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	spin := false
	if f, ok := stderr.(*os.File); ok {
		spin = cli.IsTerminal(f)
	}

	return &env{
		cfg:     cfg,
		logger:  logger,
		tokens:  tokens,
		gateway: gateway,
		store:   state.NewStore(gateway, state.Options{PageSize: cfg.Pagination.PageSize, Logger: logger}),
		stdout:  stdout,
		stderr:  stderr,
		spin:    spin,
	}, cleanup, nil
}

func serveMetrics(addr string, logger *logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics listener failed")
		}
	}()
	logger.WithField("addr", addr).Info("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands)+1)
	for name := range commands {
		names = append(names, name)
	}
	names = append(names, "completion")
	sort.Strings(names)
	return names
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: %s [flags] <command> [command flags] [args]\n\nCommands:\n", program)
	for _, name := range commandNames() {
		summary := "Print a shell completion script (bash|zsh|fish)"
		if cmd, ok := commands[name]; ok {
			summary = cmd.summary
		}
		fmt.Fprintf(w, "  %-16s %s\n", name, summary)
	}
	fmt.Fprintln(w, "\nFlags:")
	fs.PrintDefaults()
}
