package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/fleetview/internal/adapters/nats"
	"github.com/samirrijal/fleetview/internal/core/usecases"
	"github.com/samirrijal/fleetview/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action    string `json:"action"`     // "subscribe" | "unsubscribe"
	VehicleID string `json:"vehicle_id"` // "" = all vehicles
	Channel   string `json:"channel"`    // "alerts" | "positions" (default: alerts)
}

// FeedSubjects resolves a feed request onto NATS subjects. An empty owner
// means auth is disabled and any vehicle may be watched. Otherwise only the
// owner's vehicles are reachable and an empty vehicleID expands to all of
// them.
func FeedSubjects(ctx context.Context, vehicles *usecases.VehicleService, owner, vehicleID, channel string) ([]string, error) {
	var prefix string
	switch channel {
	case "", "alerts":
		prefix = natsadapter.SubjectAlertPrefix
	case "positions":
		prefix = natsadapter.SubjectVehiclePrefix
	default:
		return nil, fmt.Errorf("unknown channel: %s", channel)
	}

	if owner == "" {
		if vehicleID == "" {
			return []string{prefix + ">"}, nil
		}
		return []string{prefix + vehicleID}, nil
	}

	if vehicleID != "" {
		v, err := vehicles.Get(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
		if v.OwnerID != owner {
			return nil, errForbiddenOwner
		}
		return []string{prefix + vehicleID}, nil
	}

	owned, err := vehicles.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(owned))
	for _, v := range owned {
		subjects = append(subjects, prefix+v.ID)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// WebSocketHandler returns a handler that relays geofence alerts and
// vehicle positions from NATS to connected clients.
// Clients send JSON: {"action":"subscribe","vehicle_id":"...","channel":"positions"}
// The connection starts subscribed to the alerts of every vehicle the
// token's owner can see.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	nc := deps.NATS
	return func(c *websocket.Conn) {
		defer c.Close()

		owner, _ := c.Locals("user_id").(string)
		logger := slog.Default().With("remote_addr", c.RemoteAddr().String())
		if owner != "" {
			logger = logger.With("owner_id", owner)
		}
		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "realtime feed not configured"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		logger.Info("ws client connected")

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription
		defer func() {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
		}()

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}
		resolve := func(m wsMessage) ([]string, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return FeedSubjects(ctx, deps.Vehicles, owner, m.VehicleID, m.Channel)
		}

		defaults, err := resolve(wsMessage{})
		if err != nil {
			logger.Error("ws default feed", "error", err)
			return
		}
		for _, subject := range defaults {
			sub, err := nc.Subscribe(subject, relay)
			if err != nil {
				logger.Error("ws default subscribe", "subject", subject, "error", err)
				return
			}
			subs[subject] = sub
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subjects, err := resolve(m)
			if err != nil {
				_ = writeJSON(map[string]string{"error": err.Error()})
				continue
			}

			switch m.Action {
			case "subscribe":
				var added []string
				for _, subject := range subjects {
					if _, exists := subs[subject]; exists {
						continue
					}
					s, err := nc.Subscribe(subject, relay)
					if err != nil {
						_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
						break
					}
					subs[subject] = s
					added = append(added, subject)
				}
				_ = writeJSON(map[string]interface{}{"status": "subscribed", "subjects": added})

			case "unsubscribe":
				var removed []string
				for _, subject := range subjects {
					if s, exists := subs[subject]; exists {
						_ = s.Unsubscribe()
						delete(subs, subject)
						removed = append(removed, subject)
					}
				}
				if len(removed) == 0 {
					_ = writeJSON(map[string]string{"error": "not subscribed"})
					continue
				}
				_ = writeJSON(map[string]interface{}{"status": "unsubscribed", "subjects": removed})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		logger.Info("ws client disconnected")
	}
}
