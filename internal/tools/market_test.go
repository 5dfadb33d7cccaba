package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/pkg/errors"
)

func TestBuildFinancials(t *testing.T) {
	closes := make([]float64, 40)
	volumes := make([]int64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
		volumes[i] = 1_000_000
	}

	result, err := buildFinancials("AAPL", "3mo", closes, volumes)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", result["symbol"])
	assert.Equal(t, "3mo", result["period"])
	assert.Equal(t, 40, result["bars"])
	assert.Equal(t, int64(1_000_000), result["average_volume"])

	price, ok := result["price"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 139.0, price["latest_close"])
	assert.Equal(t, 139.0, price["period_high"])
	assert.Equal(t, 100.0, price["period_low"])
	assert.Equal(t, 39.0, price["change_percent"])

	// 40 bars is enough for every indicator
	indicators, ok := result["indicators"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, indicators, "sma_20")
	assert.Contains(t, indicators, "rsi_14")
	assert.Contains(t, indicators, "macd")
	assert.Contains(t, indicators, "macd_signal")
	assert.Contains(t, indicators, "macd_histogram")
}

func TestBuildFinancials_ShortHistorySkipsIndicators(t *testing.T) {
	result, err := buildFinancials("TSLA", "", []float64{100, 105, 110}, nil)
	require.NoError(t, err)

	assert.Equal(t, "3mo", result["period"], "empty range defaults to 3mo")
	assert.NotContains(t, result, "indicators")
}

func TestBuildFinancials_DropsZeroCloses(t *testing.T) {
	result, err := buildFinancials("MSFT", "1mo", []float64{0, 200, 0, 210}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result["bars"])
	price := result["price"].(map[string]interface{})
	assert.Equal(t, 5.0, price["change_percent"])
}

func TestBuildFinancials_NegativeChange(t *testing.T) {
	result, err := buildFinancials("INTC", "1mo", []float64{100, 99.5, 98.876}, nil)
	require.NoError(t, err)

	price := result["price"].(map[string]interface{})
	assert.Equal(t, -1.12, price["change_percent"])
	assert.Equal(t, 98.88, price["latest_close"])
	assert.Equal(t, 98.88, price["period_low"])
}

func TestBuildFinancials_NotEnoughHistory(t *testing.T) {
	_, err := buildFinancials("NVDA", "1mo", []float64{0, 0, 120}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExternal))
}
