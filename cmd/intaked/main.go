// File path: cmd/intaked/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/forgewise/intake/internal/api"
	"github.com/forgewise/intake/internal/common"
	"github.com/forgewise/intake/internal/conversation"
	"github.com/forgewise/intake/internal/delivery"
	"github.com/forgewise/intake/internal/llm"
	"github.com/forgewise/intake/internal/mailer"
	"github.com/forgewise/intake/internal/store"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("intake: .env file not loaded", "error", err)
	} else {
		logger.Info("intake: environment loaded from .env")
	}

	addrDefault := ":8085"
	if env := strings.TrimSpace(os.Getenv("INTAKE_ADDR")); env != "" {
		addrDefault = env
	}
	addr := flag.String("addr", addrDefault, "listen address")
	auditPath := flag.String("audit-db", strings.TrimSpace(os.Getenv("INTAKE_DB_PATH")), "path to the delivery audit database (empty disables auditing)")
	localProvider := flag.Bool("local-provider", false, "use the offline echo provider instead of OpenAI")
	flag.Parse()

	logger.Info("intake: startup initiated", "addr", *addr, "audit_db", *auditPath)

	var provider llm.Provider
	if *localProvider {
		provider = llm.NewLocalProvider()
		logger.Warn("intake: using local echo provider, chat replies are stubs")
	} else {
		var err error
		provider, err = llm.NewProvider()
		if err != nil {
			logger.Error("intake: provider configuration failed", "error", err)
			fmt.Println("provider configuration error:", err)
			os.Exit(1)
		}
	}

	mailClient, err := mailer.NewFromEnv()
	if err != nil {
		logger.Error("intake: mailer configuration failed", "error", err)
		fmt.Println("mailer configuration error:", err)
		os.Exit(1)
	}
	if err := mailClient.Ready(); err != nil {
		// The server still starts; delivery endpoints fail fast until the
		// mailer settings are supplied.
		logger.Warn("intake: mailer not fully configured", "error", err)
	}

	var auditStore *store.Store
	if trimmed := strings.TrimSpace(*auditPath); trimmed != "" {
		auditStore, err = store.Open(trimmed)
		if err != nil {
			logger.Error("intake: audit store open failed", "path", trimmed, "error", err)
			fmt.Println("audit store error:", err)
			os.Exit(1)
		}
		defer auditStore.Close()
	}

	pipeline := delivery.NewPipeline(mailClient, auditStore)
	orchestrator := conversation.NewOrchestrator(provider)

	srv, err := api.NewServer(orchestrator, pipeline)
	if err != nil {
		logger.Error("intake: server initialization failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("intake: listening", "addr", *addr, "provider", provider.Name())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("intake: shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("intake: server failed", "error", err)
			fmt.Println("server error:", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("intake: graceful shutdown failed", "error", err)
	}
	logger.Info("intake: stopped")
}
