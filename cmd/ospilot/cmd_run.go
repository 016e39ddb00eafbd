// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

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

	"github.com/ospilot/ospilot/pkg/agent"
	"github.com/ospilot/ospilot/pkg/bus"
	"github.com/ospilot/ospilot/pkg/config"
	"github.com/ospilot/ospilot/pkg/device"
	"github.com/ospilot/ospilot/pkg/dialect"
	"github.com/ospilot/ospilot/pkg/logger"
	"github.com/ospilot/ospilot/pkg/providers"
	"github.com/ospilot/ospilot/pkg/task"
)

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	taskFile := fs.String("f", "", "YAML task file")
	dialectName := fs.String("dialect", "", "action dialect override")
	maxSteps := fs.Int("max-steps", 0, "step budget override")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dialectName != "" {
		cfg.Dialect = *dialectName
	}
	if *maxSteps > 0 {
		cfg.Agent.MaxSteps = *maxSteps
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	var specs []task.Spec
	if *taskFile != "" {
		specs, err = task.LoadFile(*taskFile)
		if err != nil {
			fmt.Printf("Error loading task file: %v\n", err)
			os.Exit(1)
		}
	} else {
		description := strings.TrimSpace(strings.Join(fs.Args(), " "))
		if description == "" {
			fmt.Println("Usage: ospilot run <task description> | -f tasks.yaml")
			os.Exit(1)
		}
		specs = []task.Spec{{Description: description}}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := task.NewStore(cfg.TasksDir)
	if err != nil {
		fmt.Printf("Error opening task store: %v\n", err)
		os.Exit(1)
	}

	dev, err := device.Dial(ctx, cfg.DeviceURL)
	if err != nil {
		fmt.Printf("Error connecting to device: %v\n", err)
		os.Exit(1)
	}
	defer dev.Close()

	failed := 0
	for _, spec := range specs {
		if err := runOne(ctx, cfg, store, dev, spec); err != nil {
			fmt.Printf("Task error: %v\n", err)
			failed++
		}
		if ctx.Err() != nil {
			break
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runOne(ctx context.Context, cfg *config.Config, store *task.Store, dev device.Device, spec task.Spec) error {
	dialectName := spec.Dialect
	if dialectName == "" {
		dialectName = cfg.Dialect
	}
	parser, err := dialect.New(dialectName)
	if err != nil {
		return err
	}

	providerName := cfg.Provider
	if providerName == "" {
		providerName = providers.ForDialect(dialectName)
	}

	info, err := dev.Info(ctx)
	if err != nil {
		return fmt.Errorf("query device info: %w", err)
	}
	client, err := providers.NewClient(providerName, cfg.APIKey, cfg.APIBase, cfg.Model, providers.ScreenInfo{
		Width:  info.ScreenWidth,
		Height: info.ScreenHeight,
	})
	if err != nil {
		return err
	}

	maxSteps := spec.MaxSteps
	if maxSteps <= 0 {
		maxSteps = cfg.Agent.MaxSteps
	}

	t := task.New(spec.Description, maxSteps)
	t.Dialect = dialectName
	if err := store.Save(t); err != nil {
		return err
	}
	fmt.Printf("Task %s: %s\n", t.ID, t.Description)

	events := bus.NewEventBus()
	watcherDone := make(chan struct{})
	go watchEvents(ctx, events, watcherDone)

	runner := agent.NewRunner(client, parser, dev, store, events, agent.Config{
		MaxSteps:            maxSteps,
		ImagesToKeep:        cfg.Agent.ImagesToKeep,
		MinRemovalThreshold: cfg.Agent.MinRemovalThreshold,
		MaxAttempts:         cfg.Agent.MaxAttempts,
		RetryBackoff:        time.Second,
		StepDelay:           time.Duration(cfg.Agent.StepDelaySeconds) * time.Second,
		OnNoAction:          cfg.Agent.OnNoAction,
	})

	err = runner.Solve(ctx, t)
	events.Close()
	<-watcherDone
	if err != nil {
		return err
	}

	fmt.Printf("Task %s: %s", t.ID, t.Status)
	if t.Error != "" {
		fmt.Printf(" (%s)", t.Error)
	}
	fmt.Println()
	if t.Status != task.StatusFinished {
		return fmt.Errorf("task ended with status %s", t.Status)
	}
	return nil
}

func watchEvents(ctx context.Context, events *bus.EventBus, done chan<- struct{}) {
	defer close(done)
	for {
		ev, ok := events.Consume(ctx)
		if !ok {
			return
		}
		switch ev.Type {
		case bus.EventStepStarted:
			fmt.Printf("  step %d\n", ev.Step)
		case bus.EventActionTaken:
			fmt.Printf("    -> %s\n", ev.Action)
		case bus.EventThought:
			fmt.Printf("    %s\n", ev.Message)
		case bus.EventTaskFinished:
			fmt.Printf("  done: %s\n", ev.Message)
		case bus.EventTaskFailed:
			fmt.Printf("  failed: %s\n", ev.Message)
		case bus.EventTaskCanceled:
			fmt.Println("  canceled")
		}
	}
}
