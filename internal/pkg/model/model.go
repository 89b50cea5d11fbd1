package model

import "strconv"

// Reading is one aggregated row from the iotawatt query endpoint, in watts.
type Reading struct {
	ImportWatts     float64
	ProductionWatts float64
}

type SiteMeters struct {
	ProductionKw  float64 `json:"production_kw"`
	NetImportKw   float64 `json:"net_import_kw"`
	ConsumptionKw float64 `json:"consumption_kw"`
}

// NewSiteMeters converts a reading to kilowatts. Consumption is import plus production.
func NewSiteMeters(r Reading) SiteMeters {
	return SiteMeters{
		ProductionKw:  toKilowatts(r.ProductionWatts),
		NetImportKw:   toKilowatts(r.ImportWatts),
		ConsumptionKw: toKilowatts(r.ImportWatts + r.ProductionWatts),
	}
}

// toKilowatts divides first and then rounds the resulting float to three decimal places.
func toKilowatts(w float64) float64 {
	kw, _ := strconv.ParseFloat(strconv.FormatFloat(w/1000, 'f', 3, 64), 64)
	return kw
}
