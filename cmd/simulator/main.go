package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/OldStager01/driftwatch/internal/logger"
	"github.com/OldStager01/driftwatch/internal/simulator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	target := flag.String("target", "http://localhost:8000", "service base URL")
	steps := flag.Int("steps", 50, "requests per phase")
	phases := flag.String("phases", "normal,drift", "comma-separated phase patterns (normal, drift)")
	seed := flag.Int64("seed", 0, "random seed (0 = from clock)")
	trigger := flag.Bool("trigger", true, "trigger a drift analysis run after each phase")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "development")
	logger.Info("Starting traffic simulator")

	sim := simulator.New(simulator.Config{
		TargetURL: *target,
		Steps:     *steps,
		Seed:      *seed,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, name := range strings.Split(*phases, ",") {
		pattern := simulator.ParsePattern(strings.TrimSpace(name))

		sent, failed, err := sim.RunPhase(ctx, pattern)
		if err != nil {
			return fmt.Errorf("phase %q interrupted after %d requests: %w", pattern.Name(), sent, err)
		}
		if failed > 0 {
			logger.Warnf("Phase %q had %d failed requests", pattern.Name(), failed)
		}

		if *trigger {
			triggerCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := sim.TriggerReport(triggerCtx)
			cancel()
			if err != nil {
				logger.Errorf("Failed to trigger drift analysis: %v", err)
			}
		}
	}

	logger.Info("Simulation complete")
	return nil
}
