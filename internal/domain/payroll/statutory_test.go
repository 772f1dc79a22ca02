package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPF_CapsAtWageCeiling(t *testing.T) {
	rates := DefaultStatutoryRates()

	tests := []struct {
		name  string
		basic string
		want  string
	}{
		{"below ceiling", "10000", "1200"},
		{"at ceiling", "15000", "1800"},
		{"above ceiling caps", "40000", "1800"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rates.PF(decimal.RequireFromString(tt.basic))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestESIC_OnlyUnderThreshold(t *testing.T) {
	rates := DefaultStatutoryRates()

	under := rates.ESIC(decimal.RequireFromString("20000"))
	assert.True(t, under.Equal(decimal.RequireFromString("150")), "got %s", under)

	at := rates.ESIC(decimal.RequireFromString("21000"))
	assert.True(t, at.Equal(decimal.RequireFromString("157.5")), "got %s", at)

	over := rates.ESIC(decimal.RequireFromString("21000.01"))
	assert.True(t, over.IsZero())
}

func TestTDSFor_BandedNotMarginal(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"zero band", "25000", "0"},
		{"five percent band taxes whole amount", "30000", "1500"},
		{"ten percent band", "80000", "8000"},
		{"unbounded band", "150000", "30000"},
		{"negative is zero", "-10", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TDSFor(decimal.RequireFromString(tt.amount), DefaultTDSBands)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}
