package main

import (
	"context"
	"log"

	"chat-search-be/internal/bootstrap"
	"chat-search-be/internal/config"
	"chat-search-be/internal/server"
	"chat-search-be/internal/tracer"
	"chat-search-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
