package main

import (
	"os"

	"go.uber.org/zap"

	"mailbrief/internal/config"
	"mailbrief/internal/handler"
	"mailbrief/internal/httpserver"
	"mailbrief/internal/llm"
	"mailbrief/internal/mailsource"
	"mailbrief/internal/service"
	"mailbrief/pkg/logger"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	// Load config once; read-only afterwards
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/base.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	// Outbound collaborators
	source := mailsource.NewIMAPSource(cfg.IMAP)
	completer := llm.NewOpenRouterClient(cfg.LLM)

	// Core pipeline
	brief := service.NewBriefService(source, completer, cfg.LLM.MaxConcurrent, log)

	// Handlers + router
	summarizeHandler := handler.NewSummarizeHandler(brief, log)
	inboxHandler := handler.NewInboxHandler(brief, log)
	router := httpserver.NewRouter(summarizeHandler, inboxHandler)

	log.Info("starting api server", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
