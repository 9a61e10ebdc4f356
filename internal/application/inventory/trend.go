package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-stock-api/internal/domain"
	"github.com/jhoicas/material-stock-api/internal/domain/repository"
)

// DailySnapshot es el estado de stock reconstruido para un día calendario.
type DailySnapshot struct {
	Date      time.Time // medianoche UTC del día
	Quantity  decimal.Decimal
	Reserved  decimal.Decimal
	Available decimal.Decimal
}

// Trend reconstruye la serie diaria de stock en [start, end], un snapshot
// por día calendario, ascendente.
//
// La línea base proyecta el registro actual hacia atrás para todos los días
// del rango; luego cada entrada del ledger sobrescribe el eje afectado de su
// día con NewValue y se recalcula el disponible. Para varias entradas en un
// mismo día gana la de created_at más tardío (desempate por inserción):
// última escritura por día, no replay acumulativo. La aproximación asume el
// valor actual para días sin cobertura del ledger; es una decisión conocida,
// no se corrige aquí.
//
// Lectura pura sobre un punto consistente del store; no muta nada y es
// idempotente sin escrituras intermedias.
func (uc *UseCase) Trend(ctx context.Context, materialID string, start, end time.Time) ([]DailySnapshot, error) {
	startDay := truncateDay(start)
	endDay := truncateDay(end)
	if endDay.Before(startDay) {
		return nil, fmt.Errorf("rango %s..%s invertido: %w",
			startDay.Format("2006-01-02"), endDay.Format("2006-01-02"), domain.ErrInvalidInput)
	}

	var snapshots []DailySnapshot
	err := uc.tx.RunReadOnly(ctx, func(stocks repository.MaterialStockRepository, entries repository.StockEntryRepository) error {
		stock, err := stocks.GetByMaterialID(ctx, materialID)
		if err != nil {
			return err
		}
		if stock == nil {
			return fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
		}

		// Fin de rango inclusivo: hasta el último instante del endDay.
		list, err := entries.ListByMaterialBetween(ctx, materialID, startDay, endOfDay(endDay))
		if err != nil {
			return err
		}

		days := daysBetween(startDay, endDay) + 1
		snapshots = make([]DailySnapshot, days)
		for i := range snapshots {
			snapshots[i] = DailySnapshot{
				Date:      startDay.AddDate(0, 0, i),
				Quantity:  stock.Quantity,
				Reserved:  stock.Reserved,
				Available: stock.Available,
			}
		}

		// list viene ascendente, así que la última entrada de cada día
		// es la que queda.
		for _, e := range list {
			i := daysBetween(startDay, truncateDay(e.CreatedAt))
			if i < 0 || i >= days {
				continue
			}
			if e.IsReserved {
				snapshots[i].Reserved = e.NewValue
			} else {
				snapshots[i].Quantity = e.NewValue
			}
			snapshots[i].Available = snapshots[i].Quantity.Sub(snapshots[i].Reserved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// truncateDay lleva un instante a la medianoche UTC de su día calendario.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// endOfDay devuelve el último instante representable del día.
func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// daysBetween cuenta días calendario completos entre dos medianoches UTC.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
