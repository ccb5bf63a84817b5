package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rogerioferraz/aiquery/internal/agent"
	"github.com/rogerioferraz/aiquery/internal/config"
	"github.com/rogerioferraz/aiquery/internal/httpapi"
	"github.com/rogerioferraz/aiquery/internal/ollama"
	"github.com/rogerioferraz/aiquery/internal/search"
	"github.com/rogerioferraz/aiquery/internal/streaming"
)

// capabilities bundles the capability clients so a config reload can swap
// them atomically while runs in flight keep the clients they started with.
type capabilities struct {
	mu       sync.RWMutex
	llm      *ollama.Client
	searcher *search.DuckDuckGo
	cfg      *config.Config
}

func (c *capabilities) snapshot() (*ollama.Client, *search.DuckDuckGo, *config.Config) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llm, c.searcher, c.cfg
}

func (c *capabilities) rebuild(cfg *config.Config, logger *zap.Logger) {
	llm := ollama.NewClient(ollama.Config{
		Host:    cfg.Ollama.Host,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.OllamaTimeout(),
	}, logger)
	searcher := newSearcher(cfg, logger)

	c.mu.Lock()
	c.llm = llm
	c.searcher = searcher
	c.cfg = cfg
	c.mu.Unlock()
}

// serve runs the web front end until interrupted.
func serve(mgr *config.Manager, logger *zap.Logger) error {
	caps := &capabilities{}
	caps.rebuild(mgr.Config(), logger)
	mgr.Watch(func(cfg *config.Config) {
		caps.rebuild(cfg, logger)
	})

	runner := func(ctx context.Context, question string, progress agent.Progress, answerSink io.Writer) (string, error) {
		llm, searcher, cfg := caps.snapshot()
		engine := agent.NewEngine(llm, searcher,
			agent.WithLogger(logger),
			agent.WithTemplates(loadTemplates(cfg, logger)),
			agent.WithMarket(cfg.Search.Market),
			agent.WithMaxResults(cfg.Search.MaxResults),
			agent.WithProgress(progress),
			agent.WithAnswerSink(answerSink),
		)
		state, err := engine.Run(ctx, question)
		if err != nil {
			return state.Answer, err
		}
		return state.Answer, nil
	}

	events := streaming.NewManager(256)
	server := httpapi.NewServer(runner, events, logger,
		httpapi.NewChecker("ollama", func(ctx context.Context) error {
			llm, _, _ := caps.snapshot()
			return llm.Ping(ctx)
		}),
	)

	mux := http.NewServeMux()
	server.Routes(mux)

	addr := mgr.Config().Server.Addr
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web UI listening", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
