// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ospilot/ospilot/pkg/config"
	"github.com/ospilot/ospilot/pkg/task"
)

func openStore(configPath string) *task.Store {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	store, err := task.NewStore(cfg.TasksDir)
	if err != nil {
		fmt.Printf("Error opening task store: %v\n", err)
		os.Exit(1)
	}
	return store
}

func statusCmd(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Println("Usage: ospilot status <task-id>")
		os.Exit(1)
	}

	store := openStore(*configPath)
	t, err := store.Load(fs.Arg(0))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Task:        %s\n", t.ID)
	fmt.Printf("Description: %s\n", t.Description)
	fmt.Printf("Status:      %s\n", t.Status)
	fmt.Printf("Dialect:     %s\n", t.Dialect)
	fmt.Printf("Steps:       %d / %d\n", len(t.Steps), t.MaxSteps)
	if t.Error != "" {
		fmt.Printf("Error:       %s\n", t.Error)
	}
	for _, msg := range t.ThreadMessages(task.DefaultThread) {
		fmt.Printf("  [%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.Role, msg.Content)
	}
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	fs.Parse(args)

	store := openStore(*configPath)
	tasks, err := store.List()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return
	}
	for _, t := range tasks {
		fmt.Printf("%s  %-9s  %3d steps  %s\n", t.ID, t.Status, len(t.Steps), t.Description)
	}
}

func cancelCmd(args []string) {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Println("Usage: ospilot cancel <task-id>")
		os.Exit(1)
	}

	store := openStore(*configPath)
	if err := store.Cancel(fs.Arg(0)); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Cancellation requested. The running loop will stop at its next step.")
}
