package poller

import (
	"context"
	"encoding/json"
	"log"

	"github.com/DanielAnoka/EMS-sub000/internal/cart"
	"github.com/DanielAnoka/EMS-sub000/internal/store"
	"github.com/segmentio/kafka-go"
)

// Poller consumes payment confirmations and drops the paying identity's
// persisted cart record, so the next hydrate starts from an empty cart.
type Poller struct {
	store  store.Store
	reader *kafka.Reader
}

func NewPoller(st store.Store, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "payment-confirmed",
		GroupID:  "console-cart-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{store: st, reader: reader}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("error reading message: %v", err)
			}
			continue
		}
		p.processMessage(ctx, m.Value)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		log.Printf("error closing reader: %v", err)
	}
}

func (p *Poller) processMessage(ctx context.Context, value []byte) {
	var payload map[string]interface{}
	if err := json.Unmarshal(value, &payload); err != nil {
		log.Printf("error parsing message: %v", err)
		return
	}

	userID, ok := payload["user_id"].(string)
	if !ok || userID == "" {
		log.Println("missing or invalid user_id")
		return
	}

	if err := p.store.Remove(ctx, cart.KeyFor(userID)); err != nil {
		log.Printf("failed to remove cart record: %v", err)
	}
}
