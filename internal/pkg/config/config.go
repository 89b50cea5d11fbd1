package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrMissingConfig = errors.New("missing required configuration")

type Config struct {
	IotawattCfg *IotawattConfig
	ChargeHQCfg *ChargeHQConfig
	MqttCfg     *MqttConfig
	LogLevel    string
}

type IotawattConfig struct {
	Host              string
	GridChannel       string
	ProductionChannel string
	Timeout           time.Duration
}

type ChargeHQConfig struct {
	APIKey  string
	URL     string
	Timeout time.Duration
}

type MqttConfig struct {
	Host     string
	Username string
	Password string
}

// Env holds the tunables that are only ever read from the environment.
type Env struct {
	ChargeHQURL   string        `env:"CHARGEHQ_URL" envDefault:"https://api.chargehq.net/api/public/push-solar-data"`
	SourceTimeout time.Duration `env:"SOURCE_TIMEOUT" envDefault:"15s"`
	PushTimeout   time.Duration `env:"PUSH_TIMEOUT" envDefault:"15s"`
	MqttHost      string        `env:"MQTT_HOST"`
	MqttUser      string        `env:"MQTT_USER"`
	MqttPass      string        `env:"MQTT_PASS"`
}

func LoadEnv() (Env, error) {
	return env.ParseAs[Env]()
}

// New combines the four required relay values with the environment tunables.
func New(host, grid, production, apiKey, logLevel string, e Env) *Config {
	return &Config{
		IotawattCfg: &IotawattConfig{
			Host:              host,
			GridChannel:       grid,
			ProductionChannel: production,
			Timeout:           e.SourceTimeout,
		},
		ChargeHQCfg: &ChargeHQConfig{
			APIKey:  apiKey,
			URL:     e.ChargeHQURL,
			Timeout: e.PushTimeout,
		},
		MqttCfg: &MqttConfig{
			Host:     e.MqttHost,
			Username: e.MqttUser,
			Password: e.MqttPass,
		},
		LogLevel: logLevel,
	}
}

// Validate only checks presence, the device address and key are passed through as given.
func (c *Config) Validate() error {
	if c.IotawattCfg == nil || c.ChargeHQCfg == nil {
		return ErrMissingConfig
	}
	missing := map[string]string{
		"ip":         c.IotawattCfg.Host,
		"grid":       c.IotawattCfg.GridChannel,
		"production": c.IotawattCfg.ProductionChannel,
		"key":        c.ChargeHQCfg.APIKey,
	}
	for _, name := range []string{"ip", "grid", "production", "key"} {
		if missing[name] == "" {
			return fmt.Errorf("%w: %s", ErrMissingConfig, name)
		}
	}
	if c.ChargeHQCfg.URL == "" {
		return fmt.Errorf("%w: chargehq url", ErrMissingConfig)
	}
	return nil
}

func (c *MqttConfig) Enabled() bool {
	return c != nil && c.Host != ""
}
