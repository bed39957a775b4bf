package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Camier/searxng-convivial-instance/src/core/cache"
)

// Shared channels every connected friend listens on.
var sharedChannels = []string{
	"presence:search",
	"presence:collisions",
	"discovery_feed:new",
	"digest:ready",
}

// Relay bridges the pub/sub bus to browser websockets: each connected
// user is subscribed to their personal gift channels plus the shared
// presence/feed channels, and bus messages are forwarded as JSON frames.
type Relay struct {
	bus cache.Bus
}

func NewRelay(b cache.Bus) *Relay {
	return &Relay{bus: b}
}

// Upgrade gates the route to websocket requests.
func (r *Relay) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the websocket handler. It must run behind Protected()
// so the identity locals are populated.
func (r *Relay) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("user_id").(string)
		if userID == "" {
			conn.Close()
			return
		}

		channels := append([]string{
			fmt.Sprintf("gift:received:%s", userID),
			fmt.Sprintf("gift:revealed:%s", userID),
			fmt.Sprintf("gift:shaken:%s", userID),
		}, sharedChannels...)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		messages, closeSub, err := r.bus.Subscribe(ctx, channels...)
		if err != nil {
			log.Printf("Websocket subscribe failed for %s: %v\n", userID, err)
			conn.Close()
			return
		}
		defer closeSub()

		log.Printf("Websocket client connected: %s\n", userID)

		// Reader goroutine: we ignore inbound frames but need the read
		// loop to notice disconnects.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				log.Printf("Websocket client disconnected: %s\n", userID)
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				frame := fmt.Sprintf(`{"channel":%q,"event":%s}`, msg.Channel, msg.Payload)
				if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
					log.Printf("Websocket write failed for %s: %v\n", userID, err)
					return
				}
			}
		}
	})
}
