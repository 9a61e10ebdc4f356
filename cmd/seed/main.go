// seed carga materiales iniciales en PostgreSQL desde un CSV con columnas
// material_id,description,quantity,reserved (con cabecera), y opcionalmente
// aplica ajustes desde un segundo CSV con columnas
// material_id,quantity_change,is_reserved,notes (con cabecera).
//
// Uso: go run ./cmd/seed materiales.csv [ajustes.csv]
// Usa la misma configuración que la API (DATABASE_URL o DB_*).
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-stock-api/internal/application/inventory"
	"github.com/jhoicas/material-stock-api/internal/domain"
	"github.com/jhoicas/material-stock-api/internal/domain/entity"
	"github.com/jhoicas/material-stock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/material-stock-api/pkg/config"
	"github.com/jhoicas/material-stock-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed <materiales.csv> [ajustes.csv]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := inventory.NewUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewMaterialStockRepository(pool),
		postgres.NewStockEntryRepository(pool),
		log,
	)

	seedMaterials(ctx, uc, log, os.Args[1])
	if len(os.Args) > 2 {
		seedAdjustments(ctx, uc, log, os.Args[2])
	}

	log.Info().Msg("seed terminado")
}

func openCSV(log *logger.Logger, path string) (*csv.Reader, func()) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("abrir CSV")
	}
	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil { // cabecera
		log.Fatal().Err(err).Str("file", path).Msg("leer cabecera CSV")
	}
	return r, func() { f.Close() }
}

func seedMaterials(ctx context.Context, uc *inventory.UseCase, log *logger.Logger, path string) {
	r, closeFn := openCSV(log, path)
	defer closeFn()

	created, skipped := 0, 0
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatal().Err(err).Int("line", line).Msg("leer fila CSV")
		}
		if len(rec) < 4 {
			log.Fatal().Int("line", line).Msg("fila incompleta: se esperan 4 columnas")
		}

		quantity, err := decimal.NewFromString(rec[2])
		if err != nil {
			log.Fatal().Err(err).Int("line", line).Msg("quantity inválido")
		}
		reserved, err := decimal.NewFromString(rec[3])
		if err != nil {
			log.Fatal().Err(err).Int("line", line).Msg("reserved inválido")
		}

		_, err = uc.Create(ctx, inventory.CreateMaterialInput{
			MaterialID:  rec[0],
			Description: rec[1],
			Quantity:    quantity,
			Reserved:    reserved,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrConflict):
			// ya existe: el seed es re-ejecutable
			skipped++
		default:
			log.Fatal().Err(err).Int("line", line).Msg("crear material")
		}
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("materiales cargados")
}

func seedAdjustments(ctx context.Context, uc *inventory.UseCase, log *logger.Logger, path string) {
	r, closeFn := openCSV(log, path)
	defer closeFn()

	applied := 0
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatal().Err(err).Int("line", line).Msg("leer fila CSV")
		}
		if len(rec) < 4 {
			log.Fatal().Int("line", line).Msg("fila incompleta: se esperan 4 columnas")
		}

		delta, err := decimal.NewFromString(rec[1])
		if err != nil {
			log.Fatal().Err(err).Int("line", line).Msg("quantity_change inválido")
		}
		isReserved, err := strconv.ParseBool(rec[2])
		if err != nil {
			log.Fatal().Err(err).Int("line", line).Msg("is_reserved inválido")
		}
		axis := entity.AxisQuantity
		if isReserved {
			axis = entity.AxisReserved
		}

		if _, err := uc.Adjust(ctx, rec[0], delta, axis, rec[3]); err != nil {
			log.Fatal().Err(err).Int("line", line).Msg("aplicar ajuste")
		}
		applied++
	}
	log.Info().Int("applied", applied).Msg("ajustes aplicados")
}
