package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/Camier/searxng-convivial-instance/src/core/config"
	"github.com/Camier/searxng-convivial-instance/src/core/database"
	"github.com/Camier/searxng-convivial-instance/src/core/router"
	"github.com/Camier/searxng-convivial-instance/src/core/scheduler"

	corecache "github.com/Camier/searxng-convivial-instance/src/core/cache"
	"github.com/Camier/searxng-convivial-instance/src/modules/collisions"
	"github.com/Camier/searxng-convivial-instance/src/modules/digest"
	"github.com/Camier/searxng-convivial-instance/src/modules/discoveries"
	"github.com/Camier/searxng-convivial-instance/src/modules/gifts"
	"github.com/Camier/searxng-convivial-instance/src/modules/moods"
	"github.com/Camier/searxng-convivial-instance/src/modules/notifications"
	"github.com/Camier/searxng-convivial-instance/src/modules/presence"
	"github.com/Camier/searxng-convivial-instance/src/modules/users"
)

func main() {
	// Initialize the Fiber app
	app := fiber.New()

	// Middleware
	app.Use(recover.New())   // Recover middleware to handle panics
	app.Use(cors.New())      // CORS middleware for cross-origin requests
	app.Use(requestid.New()) // Middleware to generate unique request IDs

	// Setup environment variables
	config.SetupEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}

	// Connect to Redis: one instance for TTL'd keys, one for pub/sub
	redisCache, err := corecache.ConnectCache(ctx)
	if err != nil {
		log.Fatalf("Error connecting to redis cache: %v", err)
	}
	defer redisCache.Close()

	redisBus, err := corecache.ConnectBus(ctx)
	if err != nil {
		log.Fatalf("Error connecting to redis pubsub: %v", err)
	}
	defer redisBus.Close()

	// Wire up services; lifecycle is owned here, not by module globals
	notifier := notifications.New(redisCache, redisBus)
	userStore := users.NewStore(db)
	presenceSvc := presence.NewService(redisCache, notifier)
	moodSvc := moods.NewService(redisCache, userStore)
	detector := collisions.NewDetector(collisions.NewStore(db), notifier)
	discoverySvc := discoveries.NewService(discoveries.NewStore(db), redisCache, notifier)
	giftSvc := gifts.NewService(gifts.NewStore(db), redisCache, notifier)
	digestSvc := digest.NewService(digest.NewStore(db), redisCache, notifier)

	// Background schedulers
	sweepInterval := config.Duration("GIFT_REVEAL_INTERVAL", 5*time.Minute)
	sweepTimeout := config.Duration("GIFT_REVEAL_TIMEOUT", time.Minute)
	revealRunner := scheduler.NewInterval("gift-reveal", sweepInterval, sweepTimeout, giftSvc.RevealSweep)
	revealRunner.Start(ctx)
	defer revealRunner.Stop()

	digestRunner := scheduler.NewDaily("morning-coffee", config.Int("DIGEST_HOUR", 8), 5*time.Minute, digestSvc.Run)
	digestRunner.Start(ctx)
	defer digestRunner.Stop()

	// Set up routes
	router.InitialiseAndSetupRoutes(app, router.Handlers{
		Discoveries: discoveries.NewHandler(discoverySvc, userStore, presenceSvc, detector),
		Collisions:  collisions.NewHandler(detector),
		Gifts:       gifts.NewHandler(giftSvc),
		Presence:    presence.NewHandler(presenceSvc),
		Moods:       moods.NewHandler(moodSvc),
		Digest:      digest.NewHandler(digestSvc),
		Relay:       notifications.NewRelay(redisBus),
		Health: func(c *fiber.Ctx) error {
			if err := redisCache.Ping(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
			}
			return c.JSON(fiber.Map{"status": "ok"})
		},
	})

	// Shut the server down when the signal context fires
	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v\n", err)
		}
	}()

	// Get port from config and start the server
	port := config.Config("APP_PORT")
	if port == "" {
		port = "8095"
	}
	if err := app.Listen(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatal(err)
	}
}
