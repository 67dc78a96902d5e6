package realtime

import (
	"context"
	"encoding/json"

	"printhub/pkg/kafka"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

// Bridge feeds change events consumed from kafka into the local hub.
type Bridge struct {
	hub *Hub
	log *logger.Logger
}

func NewBridge(hub *Hub, log *logger.Logger) *Bridge {
	return &Bridge{
		hub: hub,
		log: log,
	}
}

// Handle is a kafka.MessageHandler. Undecodable payloads are permanent
// failures and go to the DLQ without retries.
func (b *Bridge) Handle(_ context.Context, msg kafka.Message) error {
	var ev model.ChangeEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return kafka.NewPermanentError("decode change event", err)
	}
	if ev.ShopOwnerID == "" || ev.RecordID == "" {
		return kafka.NewPermanentError("change event missing shop_owner_id or record_id", nil)
	}

	n := b.hub.Broadcast(ev)
	b.log.Debug("change event bridged",
		"type", ev.Type,
		"record_id", ev.RecordID,
		"shop_owner_id", ev.ShopOwnerID,
		"subscribers", n,
	)
	return nil
}
