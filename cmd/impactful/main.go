package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdondismas0-hub/impactful"
	"github.com/abdondismas0-hub/impactful/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := serve(); err != nil {
			log.Fatalf("impactful: %v", err)
		}
	case "hash-password":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: impactful hash-password <password>")
			os.Exit(1)
		}
		hash, err := impactful.HashPassword(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
	case "version":
		fmt.Printf("impactful %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func serve() error {
	cfg := impactful.LoadConfig()
	cfg.SessionSecret = impactful.MustEnv("SESSION_SECRET")

	app := impactful.New(cfg, views.Default())
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Init(ctx); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func printUsage() {
	fmt.Println(`impactful - content backend for posts, books and videos

Usage:
  impactful [command] [arguments]

Commands:
  serve                     Run the web server (default)
  hash-password <password>  Print a bcrypt hash for a password
  version                   Print the impactful version
  help                      Show this help message

Configuration is read from the environment and an optional .env file.`)
}
