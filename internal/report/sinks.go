package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
)

// LogSink writes events to a slog logger.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, e Event) error {
	attrs := []any{
		slog.String("event_id", e.ID.String()),
		slog.String("event", e.Name),
	}
	if len(e.Context) > 0 {
		attrs = append(attrs, slog.Any("context", e.Context))
	}
	s.log.Log(ctx, slogLevel(e.Level), e.Message, attrs...)
	return nil
}

func (s *LogSink) Close() error { return nil }

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RedisStreamSink appends events to a Redis stream.
type RedisStreamSink struct {
	rdb    *redis.Client
	stream string
}

// NewRedisStreamSink connects lazily; the URL is only parsed here.
func NewRedisStreamSink(redisURL, stream string) (*RedisStreamSink, error) {
	const op = "report.NewRedisStreamSink"
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RedisStreamSink{rdb: redis.NewClient(opts), stream: stream}, nil
}

func (s *RedisStreamSink) Name() string { return "redis" }

func (s *RedisStreamSink) Send(ctx context.Context, e Event) error {
	const op = "report.RedisStreamSink.Send"
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: 10000,
		Approx: true,
		ID:     "*",
		Values: map[string]any{
			"name":    e.Name,
			"level":   string(e.Level),
			"payload": string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *RedisStreamSink) Close() error { return s.rdb.Close() }

// AMQPSink publishes events to a RabbitMQ topic exchange, routed by level.
type AMQPSink struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPSink dials the broker and declares the exchange.
func NewAMQPSink(url, exchange string) (*AMQPSink, error) {
	const op = "report.NewAMQPSink"
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AMQPSink{conn: conn, ch: ch, exchange: exchange}, nil
}

func (s *AMQPSink) Name() string { return "amqp" }

func (s *AMQPSink) Send(_ context.Context, e Event) error {
	const op = "report.AMQPSink.Send"
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = s.ch.Publish(
		s.exchange,
		string(e.Level)+"."+e.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    e.ID.String(),
			Timestamp:    e.At,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *AMQPSink) Close() error {
	if err := s.ch.Close(); err != nil {
		_ = s.conn.Close()
		return err
	}
	return s.conn.Close()
}
