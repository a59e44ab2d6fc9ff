package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/cfg"
	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

// OrderEventHandler реагирует на событие заказа.
type OrderEventHandler interface {
	HandleOrderEvent(ctx context.Context, event *domain.OrderEvent) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderConsumer читает события заказов и сбрасывает кэш, зависящий от остатков.
// Оффсет коммитится после обработки; битые сообщения логируются и пропускаются.
type OrderConsumer struct {
	reader  messageReader
	handler OrderEventHandler
	logger  logger.Logger
	started atomic.Bool
	done    chan struct{}
}

func NewOrderConsumer(cfg *cfg.KafkaCfg, handler OrderEventHandler, logger logger.Logger) *OrderConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.OrderTopic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: 0,
	})

	return newOrderConsumer(reader, handler, logger)
}

func newOrderConsumer(reader messageReader, handler OrderEventHandler, logger logger.Logger) *OrderConsumer {
	return &OrderConsumer{
		reader:  reader,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Run блокируется до отмены ctx или ошибки чтения.
func (c *OrderConsumer) Run(ctx context.Context) error {
	c.started.Store(true)
	defer close(c.done)
	c.logger.Infof("order consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				c.logger.Infof("order consumer stopped")
				return nil
			}
			return e.Wrap(whereami.WhereAmI(), err)
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Errorf(err, "commit failed: partition=%d offset=%d", msg.Partition, msg.Offset)
		}
	}
}

func (c *OrderConsumer) handle(ctx context.Context, msg kafka.Message) {
	event, err := decodeOrderEvent(msg.Value)
	if err != nil {
		c.logger.Warnf("skipping malformed order event: partition=%d offset=%d: %v", msg.Partition, msg.Offset, err)
		return
	}

	if err := c.handler.HandleOrderEvent(ctx, event); err != nil {
		c.logger.Errorf(err, "order event handling failed: order_id=%s", event.OrderID)
	}
}

// Close закрывает reader и ждёт выхода из Run. Сигнатура подходит для closer.Add.
func (c *OrderConsumer) Close(ctx context.Context) error {
	if err := c.reader.Close(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if !c.started.Load() {
		return nil
	}

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func decodeOrderEvent(data []byte) (*domain.OrderEvent, error) {
	var event domain.OrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}

	if event.OrderID == "" {
		return nil, fmt.Errorf("order_id: %w", e.ErrMissingFields)
	}

	return &event, nil
}
