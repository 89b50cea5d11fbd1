package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSiteMeters(t *testing.T) {
	tests := map[string]struct {
		reading Reading
		want    SiteMeters
	}{
		"importing while producing": {
			reading: Reading{ImportWatts: 500, ProductionWatts: 1200},
			want:    SiteMeters{ProductionKw: 1.2, NetImportKw: 0.5, ConsumptionKw: 1.7},
		},
		"idle": {
			reading: Reading{},
			want:    SiteMeters{},
		},
		"exporting": {
			reading: Reading{ImportWatts: -2310.4, ProductionWatts: 4100.25},
			want:    SiteMeters{ProductionKw: 4.1, NetImportKw: -2.31, ConsumptionKw: 1.79},
		},
		"rounds to three places": {
			reading: Reading{ImportWatts: 123.456789, ProductionWatts: 987.6543},
			want:    SiteMeters{ProductionKw: 0.988, NetImportKw: 0.123, ConsumptionKw: 1.111},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewSiteMeters(tt.reading))
		})
	}
}

func TestNewSiteMeters_HalfWattReadings(t *testing.T) {
	tests := map[string]struct {
		reading Reading
		want    SiteMeters
	}{
		"import ends in half watt": {
			reading: Reading{ImportWatts: 500.5},
			want:    SiteMeters{ProductionKw: 0, NetImportKw: 0.5, ConsumptionKw: 0.5},
		},
		"production ends in half watt": {
			reading: Reading{ProductionWatts: 1000.5},
			want:    SiteMeters{ProductionKw: 1.0, NetImportKw: 0, ConsumptionKw: 1.0},
		},
		"both end in half watt": {
			reading: Reading{ImportWatts: 500.5, ProductionWatts: 1000.5},
			want:    SiteMeters{ProductionKw: 1.0, NetImportKw: 0.5, ConsumptionKw: 1.501},
		},
		"exporting half watt": {
			reading: Reading{ImportWatts: -500.5, ProductionWatts: 2000},
			want:    SiteMeters{ProductionKw: 2.0, NetImportKw: -0.5, ConsumptionKw: 1.5},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewSiteMeters(tt.reading))
		})
	}
}

func TestToKilowatts_NonFinite(t *testing.T) {
	assert.True(t, math.IsInf(toKilowatts(math.Inf(1)), 1))
	assert.True(t, math.IsNaN(toKilowatts(math.NaN())))
}

func TestPayload_MeterJSON(t *testing.T) {
	p := NewMeterPayload("abc", SiteMeters{ProductionKw: 1.2, NetImportKw: 0.5, ConsumptionKw: 1.7})
	assert.False(t, p.IsError())

	data, err := json.Marshal(p)
	require.NoError(t, err)

	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, "abc", decoded["apiKey"])
	assert.NotContains(t, decoded, "error")
	assert.Equal(t, map[string]any{
		"production_kw":  1.2,
		"net_import_kw":  0.5,
		"consumption_kw": 1.7,
	}, decoded["siteMeters"])
}

func TestPayload_ErrorJSON(t *testing.T) {
	p := NewErrorPayload("abc", "Unable to read data: timeout")
	assert.True(t, p.IsError())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"apiKey":"abc","error":"Unable to read data: timeout"}`, string(data))
}

func TestPayload_EmptyErrorStillPresent(t *testing.T) {
	data, err := json.Marshal(NewErrorPayload("abc", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"apiKey":"abc","error":""}`, string(data))
}

func TestSiteMeters_Metrics(t *testing.T) {
	metrics := SiteMeters{ProductionKw: 1.2, NetImportKw: 0.5, ConsumptionKw: 1.7}.Metrics()
	require.Len(t, metrics, 3)
	assert.Equal(t, Metric{Slug: "production_kw", Name: "Production", Value: 1.2}, metrics[0])
	assert.Equal(t, "net_import_kw", metrics[1].Slug)
	assert.Equal(t, 1.7, metrics[2].Value)
}

func TestPayload_EncodeNonFinite(t *testing.T) {
	meters := NewSiteMeters(Reading{ImportWatts: math.MaxFloat64, ProductionWatts: math.MaxFloat64})
	require.True(t, math.IsInf(meters.ConsumptionKw, 1))

	_, err := NewMeterPayload("abc", meters).Encode()
	assert.Error(t, err)

	data, err := NewErrorPayload("abc", "x").Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"apiKey":"abc","error":"x"}`, string(data))
}
