package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/material-stock-api/internal/domain"
	"github.com/jhoicas/material-stock-api/internal/domain/entity"
	"github.com/jhoicas/material-stock-api/internal/domain/repository"
	"github.com/jhoicas/material-stock-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newStock(id string, quantity, reserved string) *entity.MaterialStock {
	st := &entity.MaterialStock{
		MaterialID: id,
		Quantity:   d(quantity),
		Reserved:   d(reserved),
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	st.RecomputeAvailable()
	return st
}

func TestCreate_Duplicado(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newStock("M1", "10", "0")))
	err := store.Create(ctx, newStock("M1", "20", "0"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGetByMaterialID_DevuelveCopia(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newStock("M1", "10", "0")))

	a, err := store.GetByMaterialID(ctx, "M1")
	require.NoError(t, err)
	a.Quantity = d("999")

	b, err := store.GetByMaterialID(ctx, "M1")
	require.NoError(t, err)
	assert.True(t, b.Quantity.Equal(d("10")), "mutar la copia no toca el store")
}

func TestUpdateDelete_Inexistente(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Update(ctx, newStock("NADA", "1", "0")), domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "NADA"), domain.ErrNotFound)
}

func TestList_BusquedaYPaginacion(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	seed := []*entity.MaterialStock{
		newStock("ACERO-01", "10", "0"),
		newStock("ACERO-02", "10", "0"),
		newStock("COBRE-01", "10", "0"),
	}
	seed[2].Description = "alambre de cobre"
	for _, st := range seed {
		require.NoError(t, store.Create(ctx, st))
	}

	items, total, err := store.List(ctx, 0, 10, "acero")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "ACERO-01", items[0].MaterialID)

	items, total, err = store.List(ctx, 0, 10, "Alambre")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "COBRE-01", items[0].MaterialID)

	// skip más allá del total: página vacía, total intacto
	items, total, err = store.List(ctx, 10, 5, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, items)
}

func TestLowStock_UmbralInclusivo(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newStock("A", "10", "8")))  // available 2
	require.NoError(t, store.Create(ctx, newStock("B", "5", "0")))   // available 5
	require.NoError(t, store.Create(ctx, newStock("C", "100", "0"))) // available 100

	items, err := store.LowStock(ctx, d("5"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].MaterialID)
	assert.Equal(t, "B", items[1].MaterialID)
}

func TestListByMaterialBetween_OrdenYLimites(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	add := func(id string, at time.Time) {
		require.NoError(t, store.Append(ctx, &entity.StockEntry{
			ID: id, MaterialID: "M1", CreatedAt: at,
		}))
	}
	add("tarde", base.Add(20*time.Hour))
	add("antes", base.Add(-time.Nanosecond)) // fuera del rango
	add("empate-b", base.Add(5*time.Hour))
	add("empate-a", base.Add(5*time.Hour)) // mismo instante, insertada después

	list, err := store.ListByMaterialBetween(ctx, "M1", base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "empate-b", list[0].ID, "mismo created_at: gana el orden de inserción")
	assert.Equal(t, "empate-a", list[1].ID)
	assert.Equal(t, "tarde", list[2].ID)
	assert.Less(t, list[0].Seq, list[1].Seq)
}

func TestListRecent_MasRecientePrimeroConLimite(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, &entity.StockEntry{
			ID: string(rune('a' + i)), MaterialID: "M1", CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	list, err := store.ListRecent(ctx, "M1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e", list[0].ID)
	assert.Equal(t, "d", list[1].ID)
}

// ──────────────────────────────────────────────────────────────────────────
// TxRunner
// ──────────────────────────────────────────────────────────────────────────

func TestRun_FallaSinEscritos(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newStock("M1", "100", "0")))

	boom := errors.New("boom")
	err := store.Run(ctx, func(stocks repository.MaterialStockRepository, entries repository.StockEntryRepository) error {
		stock, err := stocks.GetForUpdate(ctx, "M1")
		require.NoError(t, err)
		stock.Quantity = d("1")
		stock.RecomputeAvailable()
		require.NoError(t, stocks.Update(ctx, stock))
		require.NoError(t, entries.Append(ctx, &entity.StockEntry{ID: "x", MaterialID: "M1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	stock, err := store.GetByMaterialID(ctx, "M1")
	require.NoError(t, err)
	assert.True(t, stock.Quantity.Equal(d("100")), "rollback total")

	n, err := store.CountByMaterial(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRun_LeeSusPropiosEscritos(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newStock("M1", "100", "0")))

	err := store.Run(ctx, func(stocks repository.MaterialStockRepository, _ repository.StockEntryRepository) error {
		stock, err := stocks.GetForUpdate(ctx, "M1")
		require.NoError(t, err)
		stock.Quantity = d("40")
		stock.RecomputeAvailable()
		require.NoError(t, stocks.Update(ctx, stock))

		again, err := stocks.GetByMaterialID(ctx, "M1")
		require.NoError(t, err)
		assert.True(t, again.Quantity.Equal(d("40")), "overlay dentro de la transacción")
		return nil
	})
	require.NoError(t, err)

	stock, err := store.GetByMaterialID(ctx, "M1")
	require.NoError(t, err)
	assert.True(t, stock.Quantity.Equal(d("40")), "visible tras el commit")
}

func TestGetForUpdate_FueraDeRunRechazado(t *testing.T) {
	store := memory.NewStore()
	_, err := store.GetForUpdate(context.Background(), "M1")
	assert.Error(t, err)
}

func TestRun_EsperaDeLockAgotada(t *testing.T) {
	store := memory.NewStore()
	store.SetLockWait(50 * time.Millisecond)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newStock("M1", "100", "0")))

	holding := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.Run(ctx, func(stocks repository.MaterialStockRepository, _ repository.StockEntryRepository) error {
			_, err := stocks.GetForUpdate(ctx, "M1")
			assert.NoError(t, err)
			close(holding)
			<-time.After(300 * time.Millisecond)
			return nil
		})
	}()
	<-holding

	err := store.Run(ctx, func(stocks repository.MaterialStockRepository, _ repository.StockEntryRepository) error {
		_, err := stocks.GetForUpdate(ctx, "M1")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	<-done
}

func TestRun_MaterialesDistintosNoSeBloquean(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newStock("M1", "100", "0")))
	require.NoError(t, store.Create(ctx, newStock("M2", "100", "0")))

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.Run(ctx, func(stocks repository.MaterialStockRepository, _ repository.StockEntryRepository) error {
			_, err := stocks.GetForUpdate(ctx, "M1")
			assert.NoError(t, err)
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	// con M1 bloqueado, un ajuste sobre M2 completa sin esperar
	err := store.Run(ctx, func(stocks repository.MaterialStockRepository, _ repository.StockEntryRepository) error {
		stock, err := stocks.GetForUpdate(ctx, "M2")
		if err != nil {
			return err
		}
		stock.Quantity = d("99")
		stock.RecomputeAvailable()
		return stocks.Update(ctx, stock)
	})
	require.NoError(t, err)

	close(release)
	<-done
}

func TestRunReadOnly_RechazaEscrituras(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newStock("M1", "100", "0")))

	err := store.RunReadOnly(ctx, func(stocks repository.MaterialStockRepository, entries repository.StockEntryRepository) error {
		assert.Error(t, stocks.Update(ctx, newStock("M1", "1", "0")))
		assert.Error(t, entries.Append(ctx, &entity.StockEntry{ID: "x", MaterialID: "M1"}))

		stock, err := stocks.GetByMaterialID(ctx, "M1")
		require.NoError(t, err)
		assert.True(t, stock.Quantity.Equal(d("100")))
		return nil
	})
	require.NoError(t, err)
}
