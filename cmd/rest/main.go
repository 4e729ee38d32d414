package main

import (
	"context"
	"log"

	"doc-workbench-be/internal/bootstrap"
	"doc-workbench-be/internal/config"
	"doc-workbench-be/internal/server"
	"doc-workbench-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Start the WebSocket Hub (status event fan-out)
	go container.WebSocketHub.Run(context.Background())

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
