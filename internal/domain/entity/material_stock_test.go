package entity_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/material-stock-api/internal/domain"
	"github.com/jhoicas/material-stock-api/internal/domain/entity"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Available siempre es cantidad menos reservado tras recalcular.
func TestRecomputeAvailable(t *testing.T) {
	m := &entity.MaterialStock{MaterialID: "M1", Quantity: d("100"), Reserved: d("30")}
	m.RecomputeAvailable()
	assert.True(t, m.Available.Equal(d("70")), "available = %s", m.Available)
}

func TestSetReserved_RecalculaDisponible(t *testing.T) {
	m := &entity.MaterialStock{MaterialID: "M1", Quantity: d("100")}
	m.RecomputeAvailable()

	require.NoError(t, m.SetReserved(d("40")))
	assert.True(t, m.Reserved.Equal(d("40")))
	assert.True(t, m.Available.Equal(d("60")))
}

// Reservado por encima de la cantidad se rechaza, no se recorta.
func TestSetReserved_ExcedeCantidadFalla(t *testing.T) {
	m := &entity.MaterialStock{MaterialID: "M1", Quantity: d("50"), Reserved: d("10")}
	m.RecomputeAvailable()

	err := m.SetReserved(d("51"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	var iv *domain.InvariantViolationError
	require.True(t, errors.As(err, &iv))
	assert.Equal(t, "M1", iv.MaterialID)
	assert.True(t, iv.Reserved.Equal(d("51")))
	assert.True(t, iv.Quantity.Equal(d("50")))

	// estado intacto
	assert.True(t, m.Reserved.Equal(d("10")))
	assert.True(t, m.Available.Equal(d("40")))
}

func TestSetQuantity_DebajoDeReservadoFalla(t *testing.T) {
	m := &entity.MaterialStock{MaterialID: "M1", Quantity: d("100"), Reserved: d("60")}
	m.RecomputeAvailable()

	err := m.SetQuantity(d("59"))
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
	assert.True(t, m.Quantity.Equal(d("100")), "estado intacto tras rechazo")

	require.NoError(t, m.SetQuantity(d("60")))
	assert.True(t, m.Available.Equal(d("0")))
}

func TestClone_CopiaIndependiente(t *testing.T) {
	m := &entity.MaterialStock{MaterialID: "M1", Quantity: d("10")}
	c := m.Clone()
	c.Quantity = d("99")
	assert.True(t, m.Quantity.Equal(d("10")))
}

func TestStockEntry_Axis(t *testing.T) {
	e := &entity.StockEntry{IsReserved: true}
	assert.Equal(t, entity.AxisReserved, e.Axis())
	e.IsReserved = false
	assert.Equal(t, entity.AxisQuantity, e.Axis())
}
