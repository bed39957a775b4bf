package router

import (
	"fmt"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/Camier/searxng-convivial-instance/src/core/middleware"
	"github.com/Camier/searxng-convivial-instance/src/modules/collisions"
	"github.com/Camier/searxng-convivial-instance/src/modules/digest"
	"github.com/Camier/searxng-convivial-instance/src/modules/discoveries"
	"github.com/Camier/searxng-convivial-instance/src/modules/gifts"
	"github.com/Camier/searxng-convivial-instance/src/modules/moods"
	"github.com/Camier/searxng-convivial-instance/src/modules/notifications"
	"github.com/Camier/searxng-convivial-instance/src/modules/presence"
)

// Handlers bundles every module handler wired in main.
type Handlers struct {
	Discoveries *discoveries.Handler
	Collisions  *collisions.Handler
	Gifts       *gifts.Handler
	Presence    *presence.Handler
	Moods       *moods.Handler
	Digest      *digest.Handler
	Relay       *notifications.Relay
	Health      fiber.Handler
}

func InitialiseAndSetupRoutes(app *fiber.App, h Handlers) {
	root := app.Group("/", logger.New())

	root.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	root.Get("/health", h.Health)

	apiV1 := root.Group("/api/v1")
	setupAPIV1Routes(apiV1, h)

	// Websocket relay for live notifications
	root.Use("/ws", h.Relay.Upgrade)
	root.Get("/ws/notifications", middleware.Protected(), h.Relay.Handler())

	routes := app.GetRoutes()
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Path < routes[j].Path
	})
	for _, route := range routes {
		fmt.Printf("%s\t%s\n", route.Method, route.Path)
	}
}

func setupAPIV1Routes(router fiber.Router, h Handlers) {
	searchGroup := router.Group("/search")
	discoveryGroup := router.Group("/discoveries")
	giftGroup := router.Group("/gifts")
	presenceGroup := router.Group("/presence")
	socialGroup := router.Group("/social")

	searchGroup.Post("/track", middleware.Protected(), h.Discoveries.TrackSearch)

	discoveryGroup.Post("/", middleware.Protected(), h.Discoveries.Record)
	discoveryGroup.Get("/feed", middleware.Protected(), h.Discoveries.Feed)
	discoveryGroup.Get("/trending", middleware.Protected(), h.Discoveries.Trending)

	giftGroup.Post("/", middleware.Protected(), h.Gifts.Wrap)
	giftGroup.Post("/:id/shake", middleware.Protected(), h.Gifts.Shake)
	giftGroup.Get("/pending", middleware.Protected(), h.Gifts.Pending)
	giftGroup.Get("/inbox", middleware.Protected(), h.Gifts.Inbox)

	presenceGroup.Get("/online", middleware.Protected(), h.Presence.Online)
	presenceGroup.Post("/mood", middleware.Protected(), h.Moods.Set)
	presenceGroup.Get("/mood", middleware.Protected(), h.Moods.Current)

	router.Get("/moods", middleware.Protected(), h.Moods.List)

	socialGroup.Get("/collisions", middleware.Protected(), h.Collisions.Recent)
	socialGroup.Get("/morning-coffee", middleware.Protected(), h.Digest.MorningCoffee)
}
