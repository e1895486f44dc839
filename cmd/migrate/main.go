// Command migrate aplica en orden los archivos de migrations/ contra la base
// configurada, llevando registro por versión con checksum para detectar
// migraciones alteradas. Toma un advisory lock para correr uno a la vez.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/kardex-core/pkg/config"
	"github.com/tu-usuario/kardex-core/pkg/logger"
)

const advisoryLockKey = 583217041

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info", Service: "migrate"})

	ctx := context.Background()
	pool, err := connect(ctx, cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo conectar a la base")
	}
	defer pool.Close()

	conn, err := acquireLock(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo tomar el lock de migración")
	}
	defer conn.Release()

	if err := ensureLedger(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("no se pudo crear schema_migrations")
	}

	files, err := discover("migrations")
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudieron listar las migraciones")
	}

	for _, filename := range files {
		applied, err := apply(ctx, pool, filename)
		if err != nil {
			log.Fatal().Err(err).Str("file", filename).Msg("migración fallida")
		}
		if applied {
			log.Info().Str("file", filename).Msg("migración aplicada")
		} else {
			log.Debug().Str("file", filename).Msg("migración ya aplicada")
		}
	}
	log.Info().Int("count", len(files)).Msg("migraciones al día")
}

func connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func acquireLock(ctx context.Context, pool *pgxpool.Pool) (*pgxpool.Conn, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", advisoryLockKey).Scan(&locked); err != nil {
		conn.Release()
		return nil, err
	}
	if !locked {
		conn.Release()
		return nil, errors.New("otro migrador está corriendo")
	}
	return conn, nil
}

func ensureLedger(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`)
	return err
}

// discover lista los .sql con formato NNNN_descripcion.sql, orden ascendente.
func discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := extractVersion(entry.Name())
		if err != nil {
			return nil, err
		}
		if seen[version] {
			return nil, errors.New("versión duplicada: " + version)
		}
		seen[version] = true
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

func extractVersion(filename string) (string, error) {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 {
		return "", errors.New("nombre de migración inválido (se espera NNNN_descripcion.sql): " + filename)
	}
	return parts[0], nil
}

// apply ejecuta una migración pendiente; devuelve false si ya estaba
// registrada con el mismo checksum. Un checksum distinto es error duro.
func apply(ctx context.Context, pool *pgxpool.Pool, filename string) (bool, error) {
	version, err := extractVersion(filename)
	if err != nil {
		return false, err
	}
	body, err := os.ReadFile(filepath.Join("migrations", filename))
	if err != nil {
		return false, err
	}
	sum := sha256.Sum256(body)
	checksum := hex.EncodeToString(sum[:])

	var existing string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			return false, errors.New("checksum no coincide para " + filename + " (el archivo cambió después de aplicarse)")
		}
		return false, nil
	case errors.Is(err, pgx.ErrNoRows):
		// pendiente
	default:
		return false, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(body)); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, filename, checksum); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}
