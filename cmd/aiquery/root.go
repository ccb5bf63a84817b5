package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rogerioferraz/aiquery/internal/agent"
	"github.com/rogerioferraz/aiquery/internal/config"
	"github.com/rogerioferraz/aiquery/internal/ollama"
	"github.com/rogerioferraz/aiquery/internal/search"
)

const version = "1.0.0"

var (
	flagTimestamp bool
	flagServe     bool
	flagConfig    string
)

var rootCmd = &cobra.Command{
	Use:   "aiquery [question]",
	Short: "Autonomous search agent",
	Long: `AiQuery - Autonomous Search Agent

An AI-powered utility that reasons, refines queries, and critiques results
to provide accurate answers using local LLMs (Ollama) and DuckDuckGo.`,
	Example: `  aiquery "Qual a capital da França?"
  aiquery --serve
  aiquery -t "Como está o clima em SP?"`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVarP(&flagTimestamp, "timestamp", "t", false, "report execution timestamps and duration")
	rootCmd.Flags().BoolVarP(&flagServe, "serve", "s", false, "launch the web UI")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to config file (default ./aiquery.yaml)")
}

func run(cmd *cobra.Command, args []string) error {
	mgr, err := config.Load(flagConfig, zap.NewNop())
	if err != nil {
		return err
	}
	cfg := mgr.Config()

	logger, err := newLogger(cfg.Logging.File, cfg.Logging.Level, flagServe)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if flagServe {
		fmt.Println("[*] Launching AiQuery Web UI...")
		return serve(mgr, logger)
	}

	question := ""
	if len(args) > 0 {
		question = args[0]
	} else {
		fmt.Print("Enter your question: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		question = line
	}
	question = strings.TrimSpace(question)
	if question == "" {
		fmt.Println("[!] No query provided. Exiting.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm := ollama.NewClient(ollama.Config{
		Host:    cfg.Ollama.Host,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.OllamaTimeout(),
	}, logger)
	searcher := newSearcher(cfg, logger)

	engine := agent.NewEngine(llm, searcher,
		agent.WithLogger(logger),
		agent.WithTemplates(loadTemplates(cfg, logger)),
		agent.WithMarket(cfg.Search.Market),
		agent.WithMaxResults(cfg.Search.MaxResults),
		agent.WithAnswerSink(os.Stdout),
		agent.WithProgress(func(_ float64, desc string) {
			fmt.Println("[*] " + desc)
		}),
	)

	logger.Info("starting query", zap.String("user_query", question))
	startStamp := time.Now()

	state, runErr := engine.Run(ctx, question)
	duration := time.Since(startStamp)

	if runErr != nil {
		logger.Error("flow execution failed", zap.Error(runErr))
		fmt.Printf("[!] Critical Error: %v\n", runErr)
	}

	answer := "No answer generated."
	if state != nil && state.Answer != "" {
		answer = state.Answer
	}
	fmt.Println("\n" + strings.Repeat("-", 30))
	fmt.Printf("\n[FINAL ANSWER]:\n%s\n", answer)
	logger.Info("finished query execution")

	if flagTimestamp {
		fmt.Printf("\n%s\n", strings.Repeat("=", 30))
		fmt.Printf("Initial Timestamp: %s\n", startStamp.Format("2006-01-02 15:04:05"))
		fmt.Printf("Final Timestamp:   %s\n", startStamp.Add(duration).Format("2006-01-02 15:04:05"))
		fmt.Printf("Elapsed Time:      %.2f seconds\n", duration.Seconds())
		fmt.Println(strings.Repeat("=", 30))
		logger.Info("execution time", zap.Duration("duration", duration))
	}
	return runErr
}

func newSearcher(cfg *config.Config, logger *zap.Logger) *search.DuckDuckGo {
	var opts []search.Option
	if cfg.Search.Endpoint != "" {
		opts = append(opts, search.WithEndpoint(cfg.Search.Endpoint))
	}
	return search.NewDuckDuckGo(logger, opts...)
}

func loadTemplates(cfg *config.Config, logger *zap.Logger) agent.Templates {
	if cfg.Prompts.Path == "" {
		return agent.DefaultTemplates()
	}
	t, err := agent.LoadTemplates(cfg.Prompts.Path)
	if err != nil {
		logger.Warn("falling back to built-in prompts", zap.Error(err))
	}
	return t
}
