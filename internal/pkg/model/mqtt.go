package model

type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// RegisterMessage is a home assistant mqtt discovery config.
type RegisterMessage struct {
	Tilda             string         `json:"~"`
	Name              string         `json:"name"`
	ID                string         `json:"unique_id"`
	StateTopic        string         `json:"state_topic"`
	ValueTemplate     string         `json:"value_template"`
	UnitOfMeasurement string         `json:"unit_of_measurement"`
	DeviceClass       string         `json:"device_class"`
	StateClass        string         `json:"state_class"`
	Device            RegisterDevice `json:"device"`
}

type StateMessage struct {
	Value             string `json:"value"`
	UnitOfMeasurement string `json:"unit_of_measurement"`
}

// Metric is a single named site meter value, used by the mirror publishers.
type Metric struct {
	Slug  string
	Name  string
	Value float64
}

func (m SiteMeters) Metrics() []Metric {
	return []Metric{
		{Slug: "production_kw", Name: "Production", Value: m.ProductionKw},
		{Slug: "net_import_kw", Name: "Net Import", Value: m.NetImportKw},
		{Slug: "consumption_kw", Name: "Consumption", Value: m.ConsumptionKw},
	}
}
