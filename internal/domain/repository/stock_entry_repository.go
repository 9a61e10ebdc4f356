package repository

import (
	"context"
	"time"

	"github.com/jhoicas/material-stock-api/internal/domain/entity"
)

// StockEntryRepository define el puerto de persistencia para el ledger de
// ajustes. Solo admite append y lectura: las entradas jamás se mutan ni se
// eliminan.
type StockEntryRepository interface {
	// Append persiste una entrada nueva. Asigna ID si viene vacío y el
	// número de secuencia de inserción.
	Append(ctx context.Context, entry *entity.StockEntry) error

	// ListByMaterialBetween devuelve las entradas de un material con
	// created_at en [from, to], ascendente por created_at con desempate
	// por orden de inserción.
	ListByMaterialBetween(ctx context.Context, materialID string, from, to time.Time) ([]*entity.StockEntry, error)

	// ListRecent devuelve hasta limit entradas de un material, la más
	// reciente primero.
	ListRecent(ctx context.Context, materialID string, limit int) ([]*entity.StockEntry, error)

	// CountByMaterial devuelve el total de entradas de un material.
	CountByMaterial(ctx context.Context, materialID string) (int, error)
}
