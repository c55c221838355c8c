// Command opsgraph runs the Enterprise Ops Copilot, either as an
// interactive console session or as an HTTP service with -serve.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/leofalp/opsgraph/config"
	"github.com/leofalp/opsgraph/copilot"
	"github.com/leofalp/opsgraph/prompts"
	"github.com/leofalp/opsgraph/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "opsgraph:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	serve := flag.Bool("serve", false, "serve HTTP instead of the interactive console")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	pilot, err := copilot.NewDefault(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve {
		httpServer := server.New(pilot, prompts.NewRegistry(), logger)
		return httpServer.ListenAndServe(ctx, cfg.ListenAddr)
	}

	return console(ctx, pilot, cfg)
}

func console(ctx context.Context, pilot *copilot.Copilot, cfg config.Config) error {
	fmt.Println("Enterprise Ops Copilot")
	fmt.Printf("Budget per run: $%.2f. Type a request, or 'quit' to exit.\n\n", cfg.MaxBudgetPerRun)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			return nil
		}

		result, err := pilot.Run(ctx, input)
		if err != nil {
			fmt.Fprintln(os.Stderr, "run failed:", err)
			if result == nil {
				continue
			}
		}

		printResult(result)
	}
}

func printResult(result *copilot.Result) {
	fmt.Println()
	fmt.Println(result.FinalAnswer)
	fmt.Println()
	fmt.Printf("intent=%s tier=%d risk=%s cost=$%.6f\n",
		result.Intent, result.QualityTier, result.RiskLevel, result.CumulativeCost)
	if result.Error != "" {
		fmt.Printf("error=%s\n", result.Error)
	}
	for _, record := range result.Trace {
		line := fmt.Sprintf("  %-24s %s", record.Step, record.Action)
		if record.Cost > 0 {
			line += fmt.Sprintf(" ($%.6f)", record.Cost)
		}
		if record.Reason != "" {
			line += " - " + record.Reason
		}
		fmt.Println(line)
	}
	fmt.Println()
}
