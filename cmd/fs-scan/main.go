package main

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/engine/manager"
	"FlowSentry/internal/report"
	"FlowSentry/pkg/flowlog"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/akamensky/argparse"
)

func main() {
	parser := argparse.NewParser("fs-scan", "Classify a CSV network flow log into backdoor, DoS and reconnaissance activity")

	configArg := parser.String("c", "config", &argparse.Options{
		Required: false,
		Help:     "YAML configuration file. Built-in defaults are used when omitted",
	})
	inputArg := parser.String("i", "input", &argparse.Options{
		Required: false,
		Help:     "Flow log to scan (overrides scan.input_path)",
	})
	workerArg := parser.Int("w", "workers", &argparse.Options{
		Required: false,
		Help:     "Number of parallel workers (overrides scan.num_workers)",
		Default:  0,
	})
	verboseArg := parser.Flag("v", "verbose", &argparse.Options{
		Help: "Log every skipped line and every triggering record",
	})
	jsonArg := parser.Flag("j", "json", &argparse.Options{
		Help: "Print the report as JSON instead of the console layout",
	})
	noDispatchArg := parser.Flag("n", "no-dispatch", &argparse.Options{
		Help: "Only print the report; skip writers, NATS and alerting",
	})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	cfg := config.Default()
	if *configArg != "" {
		var err error
		cfg, err = config.LoadConfig(*configArg)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *inputArg != "" {
		cfg.Scan.InputPath = *inputArg
	}
	if *workerArg > 0 {
		cfg.Scan.NumWorkers = *workerArg
	}
	if *verboseArg {
		cfg.Scan.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	src, err := flowlog.NewReader(cfg.Scan.InputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, err := manager.NewManager(cfg)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}
	defer m.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := m.Run(ctx, src, cfg.Scan.InputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: scan failed: %v\n", err)
		m.Close()
		os.Exit(1)
	}

	if *jsonArg {
		err = report.WriteJSON(os.Stdout, r)
	} else {
		err = report.WriteText(os.Stdout, r)
	}
	if err != nil {
		log.Printf("ERROR: failed to print report: %v", err)
	}

	if *noDispatchArg {
		return
	}
	if err := m.Dispatch(ctx, r); err != nil {
		log.Printf("Warning: report delivery incomplete: %v", err)
	}
}
