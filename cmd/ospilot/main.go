// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package main

import (
	"fmt"
	"os"
	"runtime"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
)

func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

func printVersion() {
	fmt.Printf("ospilot %s\n", formatVersion())
	if buildTime != "" {
		fmt.Printf("  Build: %s\n", buildTime)
	}
	fmt.Printf("  Go: %s\n", runtime.Version())
}

func printHelp() {
	fmt.Println(`ospilot - drive a remote desktop with a multimodal model

Usage:
  ospilot run [flags] <task description>
  ospilot run [flags] -f tasks.yaml
  ospilot status <task-id>
  ospilot list
  ospilot cancel <task-id>
  ospilot version

Run flags:
  -config <path>     config file (default ~/.ospilot/config.json)
  -f <path>          YAML task file instead of an inline description
  -dialect <name>    action dialect: claude, cua, qwen
  -max-steps <n>     step budget per task

Configuration can also come from OSPILOT_* environment variables.`)
}

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "status":
		statusCmd(os.Args[2:])
	case "list":
		listCmd(os.Args[2:])
	case "cancel":
		cancelCmd(os.Args[2:])
	case "version", "--version", "-v":
		printVersion()
	case "help", "--help", "-h":
		printHelp()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}
