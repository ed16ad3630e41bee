/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Linguedo strike engine server: configuration,
  dependency wiring, graceful shutdown.

CONFIGURATION:
  A .env file (if present) is loaded first; command-line flags override it.

  -port       HTTP server port            (env PORT, default 8080)
  -db         SQLite database path        (env DB_PATH, default strikes.db)
  -input      CSV input root directory    (env INPUT_DIR, default ./input)
  -csv        CSV file name per day folder(env CSV_NAME, default points.csv)
  -templates  email template directory    (env TEMPLATE_DIR, default ./templates)
  -quota      daily mail quota            (env MAIL_QUOTA, default 100)

  Domain parameters (thresholds, cursors, flags) are NOT environment
  configuration; they live in the params table and are edited through the
  API or directly in the database.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain for up to 30s,
  close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/linguedo/strike-engine/api"
	"github.com/linguedo/strike-engine/ingest"
	"github.com/linguedo/strike-engine/mail"
	"github.com/linguedo/strike-engine/store/sqlite"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("[Server] Loaded configuration from .env")
	}

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("DB_PATH", "strikes.db"), "SQLite database path")
	inputDir := flag.String("input", envString("INPUT_DIR", "./input"), "CSV input root directory")
	csvName := flag.String("csv", envString("CSV_NAME", "points.csv"), "CSV file name inside each day folder")
	templateDir := flag.String("templates", envString("TEMPLATE_DIR", "./templates"), "email template directory")
	quota := flag.Int("quota", envInt("MAIL_QUOTA", 100), "daily mail quota")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(
		store,
		store,
		mail.NewLogMailer(*quota),
		&mail.FileTemplates{Dir: *templateDir},
		&ingest.DirSource{Root: *inputDir, FileName: *csvName},
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[Server] Listening on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Server] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("[Server] Stopped")
}

func envString(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
