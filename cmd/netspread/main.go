package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/gustycube/netspread/internal/config"
	"github.com/gustycube/netspread/internal/health"
	"github.com/gustycube/netspread/internal/logging"
	"github.com/gustycube/netspread/internal/metrics"
	"github.com/gustycube/netspread/internal/output"
	"github.com/gustycube/netspread/internal/scenario"
	"github.com/gustycube/netspread/internal/sim"
	"github.com/gustycube/netspread/internal/telemetry"
)

const version = "1.0.0"

func main() {
	var configFile string
	var runID string
	var seed uint64
	var maxSteps int
	var stepRate float64
	var outputFormat string
	var logLevel string
	var metricsAddr string
	var otelEndpoint string
	var otelInsecure bool
	var otelService string
	var showVersion bool

	flag.StringVar(&configFile, "config", "", "path to config file (YAML or JSON)")
	flag.StringVar(&runID, "run", "", "run id")
	flag.Uint64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	flag.IntVar(&maxSteps, "max_steps", 0, "maximum propagation steps")
	flag.Float64Var(&stepRate, "step_rate", 0, "steps per second (0 for unthrottled)")
	flag.StringVar(&outputFormat, "output_format", "", "output format (text, json, jsonl, csv)")
	flag.StringVar(&logLevel, "log_level", "", "log level (debug, info, warn, error)")
	flag.StringVar(&metricsAddr, "metrics_addr", "", "metrics listen addr (empty to disable)")
	flag.StringVar(&otelEndpoint, "otel_endpoint", "", "OTLP HTTP endpoint (host:port)")
	flag.BoolVar(&otelInsecure, "otel_insecure", true, "OTLP insecure (no TLS)")
	flag.StringVar(&otelService, "otel_service", "", "OTEL service.name")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "netspread simulates an infection spreading across a network of computers\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -seed=42 -output_format=jsonl\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -step_rate=2 -metrics_addr=:9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  NETSPREAD_SEED          Random seed\n")
		fmt.Fprintf(os.Stderr, "  NETSPREAD_METRICS_ADDR  Metrics listen addr\n")
		fmt.Fprintf(os.Stderr, "  LOG_LEVEL               Log level (debug, info, warn, error)\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Println("netspread v" + version)
		fmt.Println("Built with Go", strings.TrimPrefix(runtime.Version(), "go"))
		os.Exit(0)
	}

	boot := logging.New()

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			boot.Fatalw("failed to load config file", "file", configFile, "err", err)
		}
	} else {
		cfg = &config.Config{}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		boot.Fatalw("invalid environment", "err", err)
	}

	// Command-line flags take precedence over file and environment
	flags := map[string]interface{}{
		"run":           runID,
		"seed":          seed,
		"max_steps":     maxSteps,
		"step_rate":     stepRate,
		"output_format": outputFormat,
		"log_level":     logLevel,
		"metrics_addr":  metricsAddr,
		"otel_endpoint": otelEndpoint,
		"otel_service":  otelService,
		"otel_insecure": otelInsecure,
	}
	cfg.MergeWithFlags(flags)
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		boot.Fatalw("invalid configuration", "err", err)
	}
	_ = boot.Sync()

	log, err := logging.NewWithLevel(cfg.LogLevel)
	if err != nil {
		boot.Fatalw("logger init", "err", err)
	}
	defer log.Sync()
	if configFile != "" {
		log.Infow("loaded config from file", "file", configFile)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.OTELService, cfg.Run, cfg.OTELInsecure)
	if err != nil {
		log.Warnw("otel init failed", "err", err)
	} else {
		defer shutdown(context.Background())
	}

	n, err := scenario.Example()
	if err != nil {
		log.Fatalw("build network", "err", err)
	}

	w, err := output.NewStdoutWriter(cfg.OutputFormat)
	if err != nil {
		log.Fatalw("output writer", "err", err)
	}
	defer w.Flush()

	rnd := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	s := sim.New(sim.Options{
		RunID:    cfg.Run,
		MaxSteps: cfg.MaxSteps,
		StepRate: cfg.StepRate,
	}, rnd, w, log)

	healthHandler := health.NewHandler(log)
	healthHandler.SetMetadata("run", cfg.Run)
	healthHandler.SetMetadata("seed", fmt.Sprint(cfg.Seed))
	healthHandler.SetMetadata("version", version)
	healthHandler.RegisterChecker("simulation", health.NewRunChecker(s.Progress, cfg.MaxSteps))

	if cfg.MetricsAddr != "" {
		go metrics.ServeWithHealth(cfg.MetricsAddr, healthHandler, log)
		log.Infow("metrics and health server started", "addr", cfg.MetricsAddr)
	}

	log.Infow("starting netspread",
		"run", cfg.Run,
		"seed", cfg.Seed,
		"computers", len(n.Computers()),
		"edges", n.Edges(),
		"max_steps", cfg.MaxSteps,
		"step_rate", cfg.StepRate,
		"output_format", cfg.OutputFormat,
	)

	healthHandler.SetReady(true)
	if _, err := s.Run(ctx, n); err != nil {
		if ctx.Err() != nil {
			log.Warnw("run interrupted", "err", err)
			return
		}
		log.Fatalw("run failed", "err", err)
	}
}
