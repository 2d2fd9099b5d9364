package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "jsonsql/internal/mcp"
	"jsonsql/internal/secret"
	"jsonsql/internal/service"
	"jsonsql/internal/storage"
)

// ServeMCP runs the converter as a standalone MCP server on stdin/stdout with
// no GUI. Saved jobs keep their cron and file-watch triggers while it runs.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbPath, err := storage.DefaultPath()
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v", err)
	}
	db, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	conns := service.NewConnectionService(storage.NewDBConnectionStore(db), secret.Default())
	defer conns.Close()

	convertSvc := service.NewConvertService(storage.NewJobStore(db), conns, nil)
	convertSvc.RestartWatchers(ctx)
	defer convertSvc.Stop()

	mcpSrv := mcpserver.New(mcpserver.Deps{Convert: convertSvc})

	errCh := make(chan error, 1)
	go func() { errCh <- mcpSrv.ServeStdio() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("[MCP] Server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("[MCP] Shutting down")
	}
	convertSvc.WaitRunning(context.Background())
}
