package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mikeboe/paper-assistant/pkg/chat"
	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/clients"
	"github.com/mikeboe/paper-assistant/pkg/config"
	"github.com/mikeboe/paper-assistant/pkg/pdf"
	"github.com/mikeboe/paper-assistant/pkg/research"
	"github.com/mikeboe/paper-assistant/pkg/server"
	"github.com/mikeboe/paper-assistant/pkg/session"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load("")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	llm, err := clients.NewChatModel(ctx, cfg)
	if err != nil {
		slog.Error("Failed to init language model", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}

	style, err := citation.ParseStyle(cfg.DefaultCitationStyle)
	if err != nil {
		slog.Error("Invalid default citation style", "error", err)
		os.Exit(1)
	}

	var ocr *pdf.OCRClient
	if cfg.MistralAPIKey != "" {
		ocr = pdf.NewOCRClient(cfg.MistralAPIKey)
	}

	// The assistant is optional; everything else works without it.
	chatSvc, err := chat.NewService(ctx, cfg)
	if err != nil {
		if !errors.Is(err, chat.ErrUnavailable) {
			slog.Error("Failed to init chat service", "error", err)
			os.Exit(1)
		}
		slog.Warn("Assistant disabled", "provider", cfg.Provider)
		chatSvc = nil
	}

	analyzer := research.NewAnalyzer(research.Config{
		ContentLimit:    cfg.ContentLimit,
		SummaryCacheTTL: cfg.SummaryCacheTTL,
	}, llm)

	svc := server.NewService(session.NewStore(cfg.SessionTTL, style), analyzer, pdf.NewExtractor(ocr), chatSvc)
	svc.SearchTopK = cfg.SearchTopK
	handler := server.NewHandler(svc)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Mcp-Session-Id", "Mcp-Protocol-Version"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Mcp-Session-Id"},
		AllowCredentials: !containsWildcard(cfg.AllowOrigins),
	}))

	handler.RegisterRoutes(r)

	slog.Info("Server starting", "port", cfg.Port, "provider", cfg.Provider, "model", llm.Name())
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

// containsWildcard reports whether origins allows any origin. cors rejects
// credentials combined with a "*" origin.
func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

