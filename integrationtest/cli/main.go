// Package main provides an interactive CLI for exercising the engine
// against a real OpenAI-compatible backend.
//
// Usage:
//
//	UNIQLIST_TEST_OPENAI_KEY=sk-... go run ./integrationtest/cli
//
// Each prompt line is "<count> <query>", e.g. "10 programming languages".
// Items, diagnostics, and full attempt logs are printed; telemetry records
// go to .logs/uniqlist.jsonl.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rickchristie/uniqlist"
	"github.com/rickchristie/uniqlist/backfill"
	"github.com/rickchristie/uniqlist/loggers"
	"github.com/rickchristie/uniqlist/models"
	"github.com/rickchristie/uniqlist/telemetry"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorDim   = "\033[2m"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

func run() error {
	apiKey := os.Getenv("UNIQLIST_TEST_OPENAI_KEY")
	if apiKey == "" {
		return fmt.Errorf("UNIQLIST_TEST_OPENAI_KEY is not set")
	}

	logDir := ".logs"
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile, err := os.Create(filepath.Join(logDir, "cli_uniqlist.log"))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	writer, err := telemetry.NewWriter(filepath.Join(logDir, "uniqlist.jsonl"))
	if err != nil {
		return err
	}
	defer writer.Close()

	newSession := func() (llms.Model, error) {
		return openai.New(openai.WithToken(apiKey))
	}
	llm, err := newSession()
	if err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}
	backend := models.NewLCGBackend(llm).
		WithModelName("gpt-4o-mini").
		WithSessionFactory(newSession)

	hooks := uniqlist.NewHookRegistry().
		Register(loggers.NewLoggerHookWithWriter(logFile)).
		Register(telemetry.NewHook(writer))

	engine := uniqlist.New(backend, backfill.Hybrid(), uniqlist.DefaultConfig()).
		WithHooks(hooks)

	rl, err := readline.New(colorCyan + "uniqlist> " + colorReset)
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("Enter \"<count> <query>\", e.g. \"10 programming languages\". Ctrl-D to quit.")
	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		count, query, err := parseLine(line)
		if err != nil {
			fmt.Printf("%s%v%s\n", colorRed, err, colorReset)
			continue
		}

		items, diags, err := engine.Generate(ctx, query, count, nil)
		if err != nil {
			fmt.Printf("%srun failed: %v%s\n", colorRed, err, colorReset)
		}
		for i, item := range items {
			fmt.Printf("%s%2d.%s %s\n", colorGreen, i+1, colorReset, item)
		}
		fmt.Printf("%sunique=%d/%d dup_rate=%.2f rounds=%d breaker=%v reason=%q%s\n",
			colorDim, diags.UniqueCount, diags.TargetCount, diags.DuplicateRate,
			diags.BackfillRounds, diags.CircuitBreakerTriggered,
			diags.FailureReason, colorReset)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func parseLine(line string) (int, string, error) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("expected \"<count> <query>\"")
	}
	count, err := strconv.Atoi(parts[0])
	if err != nil || count < 1 {
		return 0, "", fmt.Errorf("invalid count %q", parts[0])
	}
	return count, strings.TrimSpace(parts[1]), nil
}
