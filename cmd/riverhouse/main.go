package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"go.uber.org/zap"

	"github.com/riverhouse-belgrade/riverhouse/config"
	_ "github.com/riverhouse-belgrade/riverhouse/docs"
	"github.com/riverhouse-belgrade/riverhouse/internal/adminapi"
	"github.com/riverhouse-belgrade/riverhouse/internal/app"
	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

const shutdownTimeout = 10 * time.Second

// @title River House Belgrade API
// @version 1.0
// @BasePath /api
func main() {
	parser := argparse.NewParser("riverhouse", "River House Belgrade content and booking backend")
	cfile := parser.String("c", "conf", &argparse.Options{Help: "config yaml file", Default: "/etc/riverhouse.yml"})
	initdb := parser.Flag("", "initdb", &argparse.Options{Help: "drop and recreate all tables, then exit"})
	migrate := parser.Flag("", "migrate", &argparse.Options{Help: "migrate the schema and legacy price rows, then exit"})
	dev := parser.Flag("", "dev", &argparse.Options{Help: "development mode, enables debug logging"})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*cfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config %s: %v\n", *cfile, err)
		os.Exit(1)
	}
	if *dev {
		cfg.System.Debug = true
		cfg.Logger.Mode = "development"
	}
	cfg.InitDirs()

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	switch {
	case *initdb:
		application.InitDb()
		zap.S().Info("database initialized")
		return
	case *migrate:
		n, err := application.MigratePrices(context.Background())
		if err != nil {
			zap.S().Errorf("price migration failed: %v", err)
			return
		}
		zap.S().Infof("schema migrated, %d legacy price rows upgraded", n)
		return
	}

	webserver.Init(application)
	adminapi.Init()

	errCh := make(chan error, 1)
	go func() {
		errCh <- webserver.Listen()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		zap.S().Infof("received %s, shutting down", s)
	case err := <-errCh:
		if err != nil {
			zap.S().Errorf("web server stopped: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := webserver.Shutdown(ctx); err != nil {
		zap.S().Errorf("web server shutdown: %v", err)
	}
}
