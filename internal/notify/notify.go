// Package notify delivers order receipts to customers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Message struct {
	OrderID int64     `json:"order_id"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    []string  `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification",
		zap.Int64("order_id", msg.OrderID),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", strings.Join(msg.Body, "\n")))
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes each message as JSON keyed by order id, so all
// messages of an order land on one partition.
type KafkaSender struct {
	writer messageWriter
	now    func() time.Time
}

func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		now: time.Now,
	}
}

func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = s.now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.OrderID, 10)),
		Value: data,
		Time:  msg.SentAt,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}

// New picks the Kafka sender when brokers are configured and the log sender
// otherwise.
func New(brokers []string, topic string, logger *zap.Logger) Sender {
	if len(brokers) == 0 {
		return NewLogSender(logger)
	}
	return NewKafkaSender(brokers, topic)
}
