package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq" // driver "postgres"
	"github.com/raywall/dispatch-console/pkg/model"
	_ "modernc.org/sqlite" // driver "sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS services (
		id      TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		version TEXT NOT NULL,
		type    TEXT NOT NULL,
		labels  TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS operations (
		service_id       TEXT    NOT NULL REFERENCES services(id) ON DELETE CASCADE,
		position         INTEGER NOT NULL,
		name             TEXT    NOT NULL,
		method           TEXT    NOT NULL DEFAULT '',
		input_name       TEXT    NOT NULL DEFAULT '',
		output_name      TEXT    NOT NULL DEFAULT '',
		default_delay    BIGINT  NOT NULL DEFAULT 0,
		dispatcher       TEXT    NOT NULL DEFAULT '',
		dispatcher_rules TEXT    NOT NULL DEFAULT '',
		resource_paths   TEXT    NOT NULL DEFAULT '[]',
		message_count    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (service_id, position)
	)`,
}

// SQLGateway guarda serviços em Postgres (lib/pq) ou SQLite (modernc).
type SQLGateway struct {
	db     *sql.DB
	driver string
}

// OpenSQL abre a conexão e garante o schema.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLGateway, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão SQL: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite serializa escritas: uma conexão só
		db.SetMaxOpenConns(1)
	}

	g := NewSQLGateway(db, driver)
	if err := g.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return g, nil
}

func NewSQLGateway(db *sql.DB, driver string) *SQLGateway {
	return &SQLGateway{db: db, driver: driver}
}

func (g *SQLGateway) Close() error {
	return g.db.Close()
}

func (g *SQLGateway) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := g.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("erro ao criar schema: %w", err)
		}
	}
	return nil
}

// rebind troca "?" por "$n" no Postgres.
func (g *SQLGateway) rebind(query string) string {
	if g.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (g *SQLGateway) GetServiceView(ctx context.Context, serviceID string) (*model.ServiceView, error) {
	var (
		svc    model.Service
		labels string
	)
	err := g.db.QueryRowContext(ctx,
		g.rebind(`SELECT id, name, version, type, labels FROM services WHERE id = ?`), serviceID,
	).Scan(&svc.ID, &svc.Name, &svc.Version, &svc.Type, &labels)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}
	if err != nil {
		return nil, fmt.Errorf("erro na query SQL: %w", err)
	}
	if err := json.Unmarshal([]byte(labels), &svc.Labels); err != nil {
		return nil, fmt.Errorf("labels inválidas para '%s': %w", serviceID, err)
	}

	rows, err := g.db.QueryContext(ctx, g.rebind(`
		SELECT name, method, input_name, output_name, default_delay, dispatcher,
		       dispatcher_rules, resource_paths, message_count
		FROM operations WHERE service_id = ? ORDER BY position`), serviceID)
	if err != nil {
		return nil, fmt.Errorf("erro na query SQL: %w", err)
	}
	defer rows.Close()

	view := &model.ServiceView{MessagesMap: map[string]int{}}
	for rows.Next() {
		var (
			op    model.Operation
			paths string
			count int
		)
		if err := rows.Scan(&op.Name, &op.Method, &op.InputName, &op.OutputName, &op.DefaultDelay,
			&op.Dispatcher, &op.DispatcherRules, &paths, &count); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(paths), &op.ResourcePaths); err != nil {
			return nil, fmt.Errorf("resource_paths inválido em '%s': %w", op.Name, err)
		}
		if _, seen := view.MessagesMap[op.Name]; !seen {
			view.MessagesMap[op.Name] = count
		}
		svc.Operations = append(svc.Operations, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	view.Service = svc
	return view, nil
}

// UpdateOperationProperties altera a operação de menor posição com o nome informado.
func (g *SQLGateway) UpdateOperationProperties(ctx context.Context, svc model.Service, operationName string, props model.OperationProperties) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var position sql.NullInt64
	err = tx.QueryRowContext(ctx,
		g.rebind(`SELECT MIN(position) FROM operations WHERE service_id = ? AND name = ?`),
		svc.ID, operationName,
	).Scan(&position)
	if err != nil {
		return fmt.Errorf("erro na query SQL: %w", err)
	}
	if !position.Valid {
		var exists int
		err := tx.QueryRowContext(ctx, g.rebind(`SELECT COUNT(*) FROM services WHERE id = ?`), svc.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("erro na query SQL: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", ErrServiceNotFound, svc.ID)
		}
		return fmt.Errorf("%w: %s", ErrOperationNotFound, operationName)
	}

	_, err = tx.ExecContext(ctx, g.rebind(`
		UPDATE operations SET default_delay = ?, dispatcher = ?, dispatcher_rules = ?
		WHERE service_id = ? AND position = ?`),
		props.DefaultDelay, props.Dispatcher, props.DispatcherRules, svc.ID, position.Int64)
	if err != nil {
		return fmt.Errorf("erro no update SQL: %w", err)
	}
	return tx.Commit()
}

// PutServiceView grava (upsert) um serviço e substitui suas operações.
func (g *SQLGateway) PutServiceView(ctx context.Context, view model.ServiceView) error {
	svc := view.Service
	labels, err := json.Marshal(svc.Labels)
	if err != nil {
		return err
	}
	if svc.Labels == nil {
		labels = []byte("{}")
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, g.rebind(`
		INSERT INTO services (id, name, version, type, labels) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, version = excluded.version,
			type = excluded.type, labels = excluded.labels`),
		svc.ID, svc.Name, svc.Version, string(svc.Type), string(labels))
	if err != nil {
		return fmt.Errorf("erro no upsert de serviço: %w", err)
	}

	if _, err := tx.ExecContext(ctx, g.rebind(`DELETE FROM operations WHERE service_id = ?`), svc.ID); err != nil {
		return err
	}

	for i, op := range svc.Operations {
		paths, err := json.Marshal(op.ResourcePaths)
		if err != nil {
			return err
		}
		if op.ResourcePaths == nil {
			paths = []byte("[]")
		}
		_, err = tx.ExecContext(ctx, g.rebind(`
			INSERT INTO operations (service_id, position, name, method, input_name, output_name,
				default_delay, dispatcher, dispatcher_rules, resource_paths, message_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			svc.ID, i, op.Name, op.Method, op.InputName, op.OutputName,
			op.DefaultDelay, op.Dispatcher, op.DispatcherRules, string(paths), view.MessagesMap[op.Name])
		if err != nil {
			return fmt.Errorf("erro ao inserir operação '%s': %w", op.Name, err)
		}
	}
	return tx.Commit()
}
