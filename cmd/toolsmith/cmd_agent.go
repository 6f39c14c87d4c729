package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/toolsmith-ai/toolsmith/pkg/agent"
	"github.com/toolsmith-ai/toolsmith/pkg/config"
	"github.com/toolsmith-ai/toolsmith/pkg/events"
	"github.com/toolsmith-ai/toolsmith/pkg/listeners"
	"github.com/toolsmith-ai/toolsmith/pkg/logger"
	"github.com/toolsmith-ai/toolsmith/pkg/providers"
	"github.com/toolsmith-ai/toolsmith/pkg/session"
	"github.com/toolsmith-ai/toolsmith/pkg/state"
	"github.com/toolsmith-ai/toolsmith/pkg/tools"
)

var agentMessage string

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the agent (interactive REPL, or one-shot with -m)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent(cmd.Context(), agentMessage)
	},
}

func init() {
	agentCmd.Flags().StringVarP(&agentMessage, "message", "m", "", "send one message and exit")
}

func runAgent(parentCtx context.Context, oneShot string) error {
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths, err := config.ResolveRuntimePaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	cfg, err := config.Load(paths.ConfigPath)
	if err != nil {
		return err
	}

	applyLogging(cfg, paths)

	provider, err := providers.New(cfg.Agent.Provider, cfg)
	if err != nil {
		logger.FatalC("agent", err.Error())
	}

	registry := tools.NewRegistry()
	store := tools.NewStore(paths.ToolsDir, cfg.Tools.PythonBin, cfg.Tools.PipBin, cfg.Tools.InstallDeps)
	if err := store.EnsureRoot(); err != nil {
		return err
	}
	registry.RegisterBuiltin(tools.NewThinkTool())
	registry.RegisterBuiltin(tools.NewCreateTool(registry, store))
	loaded := store.LoadAll(ctx, registry)

	sessionLog, err := session.NewLogger(paths.LogsDir)
	if err != nil {
		return err
	}
	defer sessionLog.Close()

	status := state.NewPublisher(paths.StatusPath, sessionLog.SessionID())
	defer status.Clear()

	queue := events.NewQueue()
	manager := events.NewManager(queue, listeners.Build(cfg.Listeners))
	manager.StartAll(ctx)
	defer manager.StopAll()

	model := cfg.Agent.Model
	if model == "" {
		model = provider.DefaultModel()
	}

	a := agent.New(provider, registry, queue, sessionLog, status, agent.Options{
		Model:         model,
		MaxIterations: cfg.Agent.MaxIterations,
		MaxTokens:     cfg.Agent.MaxTokens,
	})

	if oneShot != "" {
		return a.RunTurn(ctx, oneShot)
	}

	fmt.Printf("toolsmith agent — type 'quit' to exit\n\n")
	fmt.Printf("Provider: %s (%s)\n", cfg.Agent.Provider, model)
	fmt.Printf("Loaded %d tool(s) from disk\n", loaded)
	fmt.Printf("Session log: %s\n", filepath.Join(sessionLog.Dir(), "session.jsonl"))
	if running := manager.Running(); len(running) > 0 {
		fmt.Printf("Listeners: %s\n", strings.Join(running, ", "))
	}
	fmt.Println()

	lines := readLines(paths)
	a.Run(ctx, lines)
	fmt.Println("\nGoodbye!")
	return nil
}

// readLines feeds interactive input to the agent loop. The channel
// closes on quit/exit, EOF, or interrupt.
func readLines(paths *config.RuntimePaths) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "> ",
			HistoryFile:     filepath.Join(paths.Home, "history"),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			logger.ErrorCF("agent", "Failed to initialize readline", map[string]any{
				"error": err.Error(),
			})
			return
		}
		defer rl.Close()

		for {
			line, err := rl.Readline()
			if err != nil {
				return
			}
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.EqualFold(trimmed, "quit") || strings.EqualFold(trimmed, "exit") {
				return
			}
			lines <- trimmed
		}
	}()

	return lines
}

func applyLogging(cfg *config.Config, paths *config.RuntimePaths) {
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		logger.SetLevel(logger.DEBUG)
	case "warn":
		logger.SetLevel(logger.WARN)
	case "error":
		logger.SetLevel(logger.ERROR)
	default:
		logger.SetLevel(logger.INFO)
	}

	if cfg.Logging.ToFile {
		logPath := filepath.Join(paths.LogsDir, "toolsmith.log")
		if err := logger.EnableFileLogging(logPath); err != nil {
			logger.WarnCF("agent", "File logging unavailable", map[string]any{
				"error": err.Error(),
			})
		}
	}
}
