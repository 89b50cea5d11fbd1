package mqtt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gosimple/slug"

	"github.com/anicoll/iotawatt-chargehq/internal/pkg/config"
)

var ErrConnectTimeout = errors.New("unable to connect in time")

type service struct {
	client     paho_mqtt.Client
	identifier string
	registered map[string]struct{}
}

// New publishes under identifier, see Identifier.
func New(client paho_mqtt.Client, identifier string) *service {
	return &service{
		client:     client,
		identifier: identifier,
		registered: make(map[string]struct{}),
	}
}

// NewClient builds a paho client for the configured broker.
func NewClient(cfg *config.MqttConfig, clientID string) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Host).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(false)
	return paho_mqtt.NewClient(opts)
}

// Identifier derives a stable home assistant identifier for a device and its two channels.
func Identifier(cfg *config.IotawattConfig) string {
	name := fmt.Sprintf("iotawatt %s %s %s", cfg.Host, cfg.GridChannel, cfg.ProductionChannel)
	return strings.Replace(slug.Make(name), "-", "_", -1)
}

func (s *service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(time.Second * 5)
	if err := token.Error(); err != nil {
		return err
	}
	if res {
		return nil
	}
	return ErrConnectTimeout
}

func (s *service) Disconnect() {
	s.client.Disconnect(250)
}
