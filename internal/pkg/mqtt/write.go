package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/anicoll/iotawatt-chargehq/internal/pkg/model"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Write registers the site meter sensors on first use and publishes their state.
func (s *service) Write(ctx context.Context, meters model.SiteMeters) error {
	for _, metric := range meters.Metrics() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.registerSensor(metric); err != nil {
			return err
		}
		if err := s.publishState(metric); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) registerSensor(metric model.Metric) error {
	if _, exists := s.registered[metric.Slug]; exists {
		return nil
	}
	payload, err := json.Marshal(defaultRegisterMsg(s.identifier, metric))
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("homeassistant/sensor/%s_%s/config", s.identifier, metric.Slug)
	if err := s.publish(topic, 1, true, payload, 5*time.Second); err != nil {
		return err
	}
	s.registered[metric.Slug] = struct{}{}
	return nil
}

func (s *service) publishState(metric model.Metric) error {
	payload, err := json.Marshal(model.StateMessage{
		Value:             strconv.FormatFloat(metric.Value, 'f', 3, 64),
		UnitOfMeasurement: "kW",
	})
	if err != nil {
		return err
	}
	return s.publish(stateTopic(s.identifier, metric), 0, false, payload, 10*time.Second)
}

func (s *service) publish(topic string, qos byte, retained bool, payload []byte, wait time.Duration) error {
	token := s.client.Publish(topic, qos, retained, payload)
	res := token.WaitTimeout(wait)
	if err := token.Error(); err != nil {
		return err
	}
	if !res {
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	}
	return nil
}

func stateTopic(identifier string, metric model.Metric) string {
	return fmt.Sprintf("homeassistant/sensor/%s/%s/state", identifier, metric.Slug)
}

func defaultRegisterMsg(identifier string, metric model.Metric) model.RegisterMessage {
	return model.RegisterMessage{
		Tilda:             fmt.Sprintf("homeassistant/sensor/%s", identifier),
		Name:              metric.Name,
		ID:                fmt.Sprintf("%s_%s", identifier, metric.Slug),
		StateTopic:        fmt.Sprintf("~/%s/state", metric.Slug),
		ValueTemplate:     "{{ value_json.value }}",
		UnitOfMeasurement: "kW",
		DeviceClass:       "power",
		StateClass:        "measurement",
		Device: model.RegisterDevice{
			Name:         "IoTaWatt site meters",
			Identifiers:  []string{identifier},
			Model:        "IoTaWatt",
			Manufacturer: "IoTaWatt, Inc.",
		},
	}
}
