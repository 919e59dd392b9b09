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
		m, err := NewMoney(decimal.RequireFromString("150.50"), BRL)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("150.50")))
		assert.Equal(t, BRL, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(10), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("parses valid decimal string", func(t *testing.T) {
		m, err := NewMoneyFromString("99.1234", BRL)
		require.NoError(t, err)
		assert.Equal(t, "99.1234", m.StringFixed(4))
	})

	t.Run("rejects invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", BRL)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyBRLFromFloat(100.00)
	b := NewMoneyBRLFromFloat(40.50)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "140.50", sum.StringFixed(2))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "59.50", diff.StringFixed(2))
	})

	t.Run("add rejects mixed currencies", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromInt(1), USD)
		require.NoError(t, err)
		_, err = a.Add(usd)
		assert.Error(t, err)
	})

	t.Run("negate and abs", func(t *testing.T) {
		neg := a.Negate()
		assert.True(t, neg.IsNegative())
		assert.True(t, neg.Abs().Equals(a))
	})
}

func TestMoney_ClampToZero(t *testing.T) {
	t.Run("negative amount clamps to zero", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(-25.00)
		clamped := m.ClampToZero()
		assert.True(t, clamped.IsZero())
		assert.Equal(t, BRL, clamped.Currency())
	})

	t.Run("positive amount is unchanged", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(25.00)
		assert.True(t, m.ClampToZero().Equals(m))
	})

	t.Run("zero stays zero", func(t *testing.T) {
		assert.True(t, ZeroBRL().ClampToZero().IsZero())
	})
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyBRLFromFloat(10)
	large := NewMoneyBRLFromFloat(20)

	lt, err := small.LessThan(large)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := large.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, small.Equals(NewMoneyBRLFromFloat(10)))
	assert.False(t, small.Equals(large))
}

func TestMoney_Rounding(t *testing.T) {
	m, err := NewMoneyBRLFromString("10.12567")
	require.NoError(t, err)

	assert.Equal(t, "10.1257", m.Round(StorageScale).StringFixed(4))
	assert.Equal(t, "10.1256", m.Truncate(StorageScale).StringFixed(4))
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyBRLFromFloat(150.00)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"150","currency":"BRL"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(m))
}

func TestMoney_SQLRoundTrip(t *testing.T) {
	m := NewMoneyBRLFromFloat(150.25)

	v, err := m.Value()
	require.NoError(t, err)

	var scanned Money
	require.NoError(t, scanned.Scan(v))
	assert.True(t, scanned.Amount().Equal(m.Amount()))
	assert.Equal(t, DefaultCurrency, scanned.Currency())
}

func TestMoney_ScanNil(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
	assert.Equal(t, DefaultCurrency, m.Currency())
}
