package realtime

import (
	"context"
	"time"
)

const EventInventoryChanged = "inventory.changed"

// Event is what subscribers receive over the websocket and what travels on
// the Redis channel between API instances.
type Event struct {
	Type        string    `json:"type"`
	InventoryID int64     `json:"inventory_id"`
	Reason      string    `json:"reason"`
	Payload     any       `json:"payload,omitempty"`
	At          time.Time `json:"at"`
	Origin      string    `json:"origin,omitempty"`
}

// ClientMessage is sent by websocket clients.
//
//	{"type":"subscribe","inventory_ids":[1,2]}
//	{"type":"unsubscribe","inventory_ids":[2]}
//	{"type":"ping"}
type ClientMessage struct {
	Type         string  `json:"type"`
	InventoryIDs []int64 `json:"inventory_ids,omitempty"`
}

type serverMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Publisher receives committed inventory changes.
type Publisher interface {
	InventoryChanged(ctx context.Context, inventoryID int64, reason string, payload any)
}

// MultiNotifier hands every change to each publisher in turn.
type MultiNotifier []Publisher

func (m MultiNotifier) InventoryChanged(ctx context.Context, inventoryID int64, reason string, payload any) {
	for _, p := range m {
		if p != nil {
			p.InventoryChanged(ctx, inventoryID, reason, payload)
		}
	}
}
