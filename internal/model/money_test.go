package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCents(t *testing.T) {
	for in, want := range map[string]Cents{
		"150":    15000,
		"150.5":  15050,
		"0.01":   1,
		"199.99": 19999,
	} {
		got, err := ParseCents(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCents("1.234")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseCents("abc")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCentsJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Total Cents `json:"total"`
	}{Total: 30000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"300.00"}`, string(b))

	var v struct {
		Price Cents `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":"12.50"}`), &v))
	assert.Equal(t, Cents(1250), v.Price)
	require.NoError(t, json.Unmarshal([]byte(`{"price":7}`), &v))
	assert.Equal(t, Cents(700), v.Price)
}
