package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/raywall/dispatch-console/tools/emulator/config"
	"github.com/rs/zerolog/log"
)

// Injetável para testes
var serverStarter = func(ctx context.Context, s *config.ServerConfig) error {
	return s.Start(ctx)
}

func main() {
	path := os.Getenv("EMULATOR_CONFIG_PATH")
	if path == "" {
		path = "cmd/emulator/config.json"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, path); err != nil {
		log.Fatal().Err(err).Msg("emulador encerrado com erro")
	}
}

// run sobe um backend por entrada da configuração e espera todos encerrarem.
func run(ctx context.Context, configPath string) error {
	var cfg config.Config
	if err := cfg.LoadFromFile(configPath); err != nil {
		return err
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(cfg))
	for _, server := range []config.ServerConfig(cfg) {
		wg.Add(1)
		go func(s config.ServerConfig) {
			defer wg.Done()
			if err := serverStarter(ctx, &s); err != nil {
				errs <- err
			}
		}(server)
	}
	wg.Wait()
	close(errs)

	return <-errs
}
