package publish

import (
	"time"

	"codeberg.org/mutker/poolwatch/internal/annotation"
	"codeberg.org/mutker/poolwatch/internal/errors"
	"codeberg.org/mutker/poolwatch/internal/logger"
	"codeberg.org/mutker/poolwatch/internal/telemetry"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	ErrConnect = errors.ErrorCode("publish_connect_failed")
	ErrPublish = errors.ErrorCode("publish_failed")
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	qosAtLeastOnce = 1
)

type Config struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Topic    string // snapshots go to Topic, events to Topic + "/events"
}

// pahoPublisher is the real MQTT implementation.
type pahoPublisher struct {
	client mqtt.Client
	topic  string
}

func NewPaho(cfg Config) (Publisher, error) {
	errFactory := errors.New()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info().Str("broker", cfg.Broker).Msg("MQTT connected")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn().Err(err).Msg("MQTT connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errFactory.WithData(ErrConnect, cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, errFactory.Wrap(ErrConnect, err)
	}

	return &pahoPublisher{
		client: client,
		topic:  cfg.Topic,
	}, nil
}

func (p *pahoPublisher) PublishSnapshot(snapshot telemetry.Snapshot) error {
	payload, err := FormatSnapshot(snapshot)
	if err != nil {
		return errors.New().Wrap(ErrPublish, err)
	}

	return p.publish(p.topic, payload)
}

func (p *pahoPublisher) PublishAnnotation(a annotation.Annotation) error {
	payload, err := FormatAnnotation(a)
	if err != nil {
		return errors.New().Wrap(ErrPublish, err)
	}

	return p.publish(p.topic+"/events", payload)
}

func (p *pahoPublisher) publish(topic string, payload []byte) error {
	errFactory := errors.New()

	token := p.client.Publish(topic, qosAtLeastOnce, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errFactory.WithData(ErrPublish, topic)
	}
	if err := token.Error(); err != nil {
		return errFactory.Wrap(ErrPublish, err)
	}

	return nil
}

func (p *pahoPublisher) Close() error {
	p.client.Disconnect(250) // quiesce milliseconds
	return nil
}
