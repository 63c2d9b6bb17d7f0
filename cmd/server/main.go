package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/relayline/sms-assistant/internal/cache"
	"github.com/relayline/sms-assistant/internal/config"
	"github.com/relayline/sms-assistant/internal/database"
	"github.com/relayline/sms-assistant/internal/gateway"
	"github.com/relayline/sms-assistant/internal/handler"
	"github.com/relayline/sms-assistant/internal/queue"
	"github.com/relayline/sms-assistant/internal/repository"
	"github.com/relayline/sms-assistant/internal/resolver"
	"github.com/relayline/sms-assistant/internal/router"
	"github.com/relayline/sms-assistant/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: rate limiting and the whitelist cache degrade
	// to pass-throughs when it is absent.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and whitelist cache disabled")
	}

	profiles := repository.NewProfileRepo(db)
	whitelist := repository.NewWhitelistRepo(db)
	usage := repository.NewUsageRepo(db)
	messages := repository.NewMessageRepo(db)
	stripeEvents := repository.NewStripeEventRepo(db)
	admins := repository.NewAdminRepo(db)
	tokens := repository.NewTokenRepo(db)

	sms := gateway.NewHTTPGateway(cfg.GatewayURL, cfg.GatewayKey)
	queries := resolver.NewHTTPResolver(cfg.ResolverURL)
	publisher := queue.NewPublisher()
	wlCache := cache.NewWhitelist(config.LoadWhitelistCacheConfig(), rdb)

	ledger := &service.Ledger{
		Whitelist: whitelist,
		Profiles:  profiles,
		Messages:  messages,
		Gateway:   sms,
		Cache:     whitelistCache(wlCache),
		Publisher: publisher,
	}
	onboarding := &service.Onboarding{Profiles: profiles}
	quota := &service.Quota{Usage: usage}
	billing := &service.Billing{
		Profiles:  profiles,
		Events:    stripeEvents,
		Ledger:    ledger,
		Publisher: publisher,
	}
	inbound := &service.Inbound{
		Profiles:   profiles,
		Messages:   messages,
		Ledger:     ledger,
		Onboarding: onboarding,
		Quota:      quota,
		Resolver:   queries,
		Gateway:    sms,
	}

	// Background audit consumer: mirrors whitelist and billing events
	// into logs/whitelist.log.
	go func() {
		if err := queue.StartWhitelistConsumer(); err != nil {
			log.Printf("whitelist consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterWebhooks(e, handler.NewSMSHandler(inbound), handler.NewStripeHandler(billing),
		config.LoadRateLimitConfig(), rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, admins, tokens), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(ledger, profiles, messages), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// whitelistCache keeps a typed nil out of the Ledger's cache interface
// when Redis is disabled.
func whitelistCache(w *cache.Whitelist) service.WhitelistCache {
	if w == nil {
		return nil
	}
	return w
}
