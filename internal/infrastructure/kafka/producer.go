package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/cfg"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

// Producer публикует события изменения каталога в Kafka.
// Ключом сообщения служит id товара, чтобы события одного товара шли в одну партицию.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.ProductTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchSize:              10,
		BatchTimeout:           500 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

func (p *Producer) PublishProductChange(ctx context.Context, event *usecase.ProductChangeEvent) error {
	msg, err := productChangeMessage(event)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	p.logger.Debugf("product change published: id=%d op=%s", event.ProductID, event.Operation)
	return nil
}

// Close дописывает буфер и закрывает соединения. Сигнатура подходит для closer.Add.
func (p *Producer) Close(context.Context) error {
	if err := p.writer.Close(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func productChangeMessage(event *usecase.ProductChangeEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ProductID, 10)),
		Value: value,
		Time:  event.Timestamp,
	}, nil
}

// NopProducer используется, когда Kafka не настроена.
type NopProducer struct{}

func (NopProducer) PublishProductChange(context.Context, *usecase.ProductChangeEvent) error {
	return nil
}
