// Package progress publishes chat activity events for the gamification
// side-system. Delivery is best effort: publish failures are logged and
// never reach the sender of the message.
package progress

import (
	"encoding/json"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type chatMessageEvent struct {
	Type       string     `json:"type"`
	UserID     uuid.UUID  `json:"user_id"`
	TeamID     *uuid.UUID `json:"team_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

const eventTypeChatMessage = "chat.message"

// Producer implements service.ProgressNotifier on top of a Kafka topic.
type Producer struct {
	producer sarama.AsyncProducer
	topic    string
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Timeout = 10 * time.Second

	producer, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	p := &Producer{producer: producer, topic: topic}
	go p.drainErrors()
	return p, nil
}

// ChatMessageSent enqueues one event keyed by user so per-user ordering is
// kept. The enqueue is the only work done on the caller's path.
func (p *Producer) ChatMessageSent(userID uuid.UUID, teamID *uuid.UUID) {
	evt := chatMessageEvent{
		Type:       eventTypeChatMessage,
		UserID:     userID,
		TeamID:     teamID,
		OccurredAt: time.Now(),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("progress: marshal event: %v", err)
		return
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(userID.String()),
		Value: sarama.ByteEncoder(payload),
	}
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

func (p *Producer) drainErrors() {
	for err := range p.producer.Errors() {
		log.Printf("progress: publish failed: %v", err)
	}
}
