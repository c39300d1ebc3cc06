package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"techstore/internal/service"
)

// Consumer follows the order-events topic and drops stale product cache
// entries: every created or cancelled order changed the stock of the
// products it touched.
type Consumer struct {
	productSvc *service.ProductService
	reader     *kafka.Reader
}

func New(productSvc *service.ProductService, reader *kafka.Reader) *Consumer {
	return &Consumer{productSvc: productSvc, reader: reader}
}

// Run blocks reading order events until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			continue
		}
		c.processMessage(ctx, msg)
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	// key -> "order.created.<id>", "order.cancelled.<id>", "order.status_updated.<id>"
	parts := strings.Split(string(msg.Key), ".")
	if len(parts) < 3 {
		log.Error().Msgf("Unexpected event key: %s", msg.Key)
		return
	}
	eventType := parts[1]

	if eventType != "created" && eventType != "cancelled" {
		return
	}

	var event service.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error().Msgf("Error unmarshalling message: %v", err)
		return
	}

	for _, item := range event.Items {
		if err := c.productSvc.InvalidateCache(ctx, item.ProductID); err != nil {
			log.Error().Msgf("Error invalidating cache for product %s: %v", item.ProductID.Hex(), err)
		}
	}
}
