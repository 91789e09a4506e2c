package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/dispatch-console/pkg/rules"
)

type ConfigValidator struct {
	validate *validator.Validate
	rules    *rules.RuleManager
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	rm, _ := rules.NewRuleManager()
	return &ConfigValidator{
		validate: validator.New(),
		rules:    rm,
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *ConsoleConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *ConsoleConfig) error {
	if _, err := time.ParseDuration(cfg.Console.Timeout); err != nil {
		return fmt.Errorf("timeout inválido '%s': %w", cfg.Console.Timeout, err)
	}

	// 1. Campos obrigatórios por tipo de backend
	switch cfg.Backend.Type {
	case "http":
		if cfg.Backend.HTTP.BaseURL == "" {
			return fmt.Errorf("backend http exige 'base_url'")
		}
	case "dynamodb":
		if cfg.Backend.DynamoDB.Table == "" {
			return fmt.Errorf("backend dynamodb exige 'table'")
		}
	case "postgres", "sqlite":
		if cfg.Backend.SQL.DSN == "" {
			return fmt.Errorf("backend %s exige 'sql.dsn'", cfg.Backend.Type)
		}
	}

	// 2. Unicidade e compilação das guardas
	seenIDs := make(map[string]bool)
	for _, g := range cfg.Guards {
		if seenIDs[g.ID] {
			return fmt.Errorf("guard ID duplicado detectado: '%s'", g.ID)
		}
		seenIDs[g.ID] = true

		if cv.rules != nil {
			if _, err := cv.rules.CompileProgram(g.Expr); err != nil {
				return fmt.Errorf("guard '%s': %w", g.ID, err)
			}
		}
	}

	// 3. Cache sem Redis não tem o que invalidar
	if cfg.Cache.InvalidationSQS != "" && !cfg.Cache.Redis.Enabled {
		return fmt.Errorf("'invalidation_sqs' exige 'cache.redis.enabled'")
	}

	return nil
}

// RuleGuards converte as guardas da configuração para o formato do pacote rules.
func (cfg *ConsoleConfig) RuleGuards() []rules.Guard {
	out := make([]rules.Guard, 0, len(cfg.Guards))
	for _, g := range cfg.Guards {
		out = append(out, rules.Guard{ID: g.ID, Expr: g.Expr, Message: g.Msg})
	}
	return out
}
