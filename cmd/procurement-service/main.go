package main

import (
	"fmt"
	"os"

	"github.com/dlemos/procurement-service/internal/auth"
	"github.com/dlemos/procurement-service/internal/config"
	"github.com/dlemos/procurement-service/internal/db"
	"github.com/dlemos/procurement-service/internal/excel"
	httphandler "github.com/dlemos/procurement-service/internal/http"
	"github.com/dlemos/procurement-service/internal/http/middleware"
	"github.com/dlemos/procurement-service/internal/logger"
	"github.com/dlemos/procurement-service/internal/pdf"
	"github.com/dlemos/procurement-service/internal/repository"
	"github.com/dlemos/procurement-service/internal/service"
	"github.com/dlemos/procurement-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	attachments, err := storage.NewClient(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init attachment storage")
	}

	demandRepo := repository.NewDemandRepository(database)
	demandService := service.NewDemandService(demandRepo, excel.NewGenerator(), pdf.NewGenerator(), attachments)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(demandService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting procurement service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
