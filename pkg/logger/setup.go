package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/raywall/dispatch-console/pkg/config"
	"github.com/rs/zerolog"
)

// Configure inicializa o logger global baseando-se na configuração do YAML.
func Configure(cfg config.LoggingConf, console string) zerolog.Logger {
	return ConfigureWriter(cfg, console, os.Stdout)
}

// ConfigureWriter é igual a Configure, mas grava em w.
func ConfigureWriter(cfg config.LoggingConf, console string, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := w
	if !cfg.Enabled {
		output = io.Discard
	} else if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if console != "" {
		ctx = ctx.Str("console", console)
	}
	return ctx.Logger()
}
