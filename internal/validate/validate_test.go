package validate

import (
	"errors"
	"testing"

	"go-shop-manager/internal/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type priced struct {
	Name  string          `validate:"required,max=10"`
	Price decimal.Decimal `validate:"gt=0"`
	Qty   int             `validate:"gt=0"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(priced{Name: "tea", Price: decimal.NewFromInt(3), Qty: 1})
	assert.NoError(t, err)
}

func TestStruct_ReportsEveryField(t *testing.T) {
	err := Struct(priced{Name: "", Price: decimal.Zero, Qty: 0})

	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "price must be greater than 0")
	assert.Contains(t, err.Error(), "qty must be greater than 0")
}

func TestStruct_NegativeDecimal(t *testing.T) {
	err := Struct(priced{Name: "tea", Price: decimal.NewFromFloat(-0.01), Qty: 2})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestStruct_TooLong(t *testing.T) {
	err := Struct(priced{Name: "a very long product name", Price: decimal.NewFromInt(1), Qty: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "at most 10")
}
