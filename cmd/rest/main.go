package main

import (
	"context"
	"log"
	"time"

	"carecompanion-be/internal/bootstrap"
	"carecompanion-be/internal/config"
	"carecompanion-be/internal/model"
	"carecompanion-be/internal/server"
	"carecompanion-be/internal/tracer"
	"carecompanion-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := database.EnsureVectorExtension(gormDB); err != nil {
		log.Panicf("Unable to ensure pgvector extension: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.KnowledgeDocument{}, &model.DocumentEmbedding{}); err != nil {
		log.Panicf("Unable to migrate schema: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	container.Sessions.StartJanitor(
		context.Background(),
		time.Duration(cfg.Session.JanitorIntervalMinutes)*time.Minute,
	)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
