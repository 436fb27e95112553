// Command voxelserver starts one running instance: it loads a TOML config
// (or falls back to defaults), builds a server.Server from it, and runs the
// tick loop and operator console side by side until the process is asked to
// stop.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/basaltcore/voxelserver/server"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the server's TOML configuration file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	conf, err := server.LoadConfig(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Error("failed to load config, falling back to defaults", "path", *configPath, "error", err)
		}
		conf = server.DefaultConfig()
	}
	conf.Log = log

	srv := conf.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting server", "name", conf.Name, "seed", conf.Seed)
	go srv.Console().Run(ctx)
	srv.Run(ctx)
	log.Info("server stopped")
}
