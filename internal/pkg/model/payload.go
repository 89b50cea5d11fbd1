package model

import "encoding/json"

// Payload is the body posted to chargehq. Exactly one of SiteMeters or Error is set,
// build it with NewMeterPayload or NewErrorPayload.
type Payload struct {
	APIKey     string      `json:"apiKey"`
	SiteMeters *SiteMeters `json:"siteMeters,omitempty"`
	Error      *string     `json:"error,omitempty"`
}

func NewMeterPayload(apiKey string, meters SiteMeters) Payload {
	return Payload{
		APIKey:     apiKey,
		SiteMeters: &meters,
	}
}

func NewErrorPayload(apiKey, message string) Payload {
	return Payload{
		APIKey: apiKey,
		Error:  &message,
	}
}

func (p Payload) IsError() bool {
	return p.Error != nil
}

// Encode returns the json body. It fails when the site meters are not finite.
func (p Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}
