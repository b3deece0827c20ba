package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("12.34", EUR)
		require.NoError(t, err)
		assert.Equal(t, "12.34 EUR", m.String())
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", USD)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	ten := NewMoneyUSD(decimal.NewFromInt(10))
	five := NewMoneyUSD(decimal.NewFromInt(5))

	t.Run("add", func(t *testing.T) {
		sum, err := ten.Add(five)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(15)))
	})

	t.Run("add mismatched currencies fails", func(t *testing.T) {
		eur := Zero(EUR)
		_, err := ten.Add(eur)
		assert.Error(t, err)
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := ten.Subtract(five)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(5)))
	})

	t.Run("multiply", func(t *testing.T) {
		m := ten.MultiplyByInt(3)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(30)))
	})

	t.Run("percentage", func(t *testing.T) {
		m := ten.ApplyPercentage(decimal.NewFromInt(10))
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(1)))
	})
}

func TestMoney_Comparison(t *testing.T) {
	a := NewMoneyUSD(decimal.NewFromInt(10))
	b := NewMoneyUSD(decimal.NewFromInt(10))
	c := NewMoneyUSD(decimal.NewFromInt(20))

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))

	ok, err := c.GreaterThanOrEqual(a)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, ZeroUSD().IsZero())
	assert.True(t, c.IsPositive())
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyUSD(decimal.RequireFromString("19.90"))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"19.9","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}
