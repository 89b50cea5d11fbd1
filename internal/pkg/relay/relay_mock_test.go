package relay

import (
	"context"
	"encoding/json"

	"github.com/anicoll/iotawatt-chargehq/internal/pkg/model"
)

type MockSource struct {
	QueryFunc func(ctx context.Context) (model.Reading, error)
	calls     int
}

func (m *MockSource) Query(ctx context.Context) (model.Reading, error) {
	m.calls++
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx)
	}
	return model.Reading{}, nil
}

type MockSink struct {
	PushFunc func(ctx context.Context, data []byte) (string, error)
	payloads []model.Payload
}

func (m *MockSink) Push(ctx context.Context, data []byte) (string, error) {
	payload := model.Payload{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	m.payloads = append(m.payloads, payload)
	if m.PushFunc != nil {
		return m.PushFunc(ctx, data)
	}
	return "OK", nil
}

type MockMirror struct {
	PublishFunc func(ctx context.Context, meters model.SiteMeters) error
	count       int
	published   []model.SiteMeters
}

func (m *MockMirror) Len() int {
	return m.count
}

func (m *MockMirror) Publish(ctx context.Context, meters model.SiteMeters) error {
	m.published = append(m.published, meters)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, meters)
	}
	return nil
}
