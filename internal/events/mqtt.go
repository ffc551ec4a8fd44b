package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// mqttClient common/mqtt.Client 的发布子集
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	QoS() byte
	Disconnect()
}

// MQTTPublisher 发布到 <prefix>/<event type>
type MQTTPublisher struct {
	client mqttClient
	prefix string
}

// NewMQTTPublisher 创建 MQTT 发布器
func NewMQTTPublisher(client mqttClient, topicPrefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: strings.TrimSuffix(topicPrefix, "/")}
}

// Topic 事件对应的主题
func (p *MQTTPublisher) Topic(eventType string) string {
	return p.prefix + "/" + eventType
}

func (p *MQTTPublisher) Publish(_ context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.client.Publish(p.Topic(e.Type), p.client.QoS(), false, b)
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect()
	return nil
}
