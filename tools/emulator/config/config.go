package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// Config representa o JSON de configuração (lista de backends emulados).
type Config []ServerConfig

// Load carrega a configuração de EMULATOR_CONFIG_PATH ou emulator.json.
// Retorna uma configuração vazia se o arquivo não existir.
func Load() Config {
	cfg := make(Config, 0)
	path := os.Getenv("EMULATOR_CONFIG_PATH")
	if path == "" {
		path = "emulator.json"
	}

	if err := cfg.LoadFromFile(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Configuração do emulador não carregada. Nenhum backend será iniciado.")
		return cfg
	}
	return cfg
}

func (cfg *Config) LoadFromFile(filepath string) error {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("erro ao ler arquivo: %v", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("erro ao parsear json: %v", err)
	}
	return nil
}
