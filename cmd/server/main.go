package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/shoe-store-api/internal/config"
	"github.com/iliyamo/shoe-store-api/internal/database"
	"github.com/iliyamo/shoe-store-api/internal/handler"
	"github.com/iliyamo/shoe-store-api/internal/middleware"
	"github.com/iliyamo/shoe-store-api/internal/queue"
	"github.com/iliyamo/shoe-store-api/internal/repository"
	"github.com/iliyamo/shoe-store-api/internal/router"
	"github.com/iliyamo/shoe-store-api/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the public response cache. Both
	// middlewares degrade to pass-through when the client is nil.
	rdb := config.NewRedisClient()
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	products := repository.NewProductRepo(db)
	carts := repository.NewCartRepo(db)
	orders := repository.NewOrderRepo(db)

	tokenSvc := service.NewTokenService(tokens, users, cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	twoFactorSvc := service.NewTwoFactorService(users, cfg.TOTPIssuer)
	sessionSvc := service.NewSessionService(users, tokenSvc, twoFactorSvc, cfg.BcryptCost)
	checkoutSvc := service.NewCheckoutService(carts, orders, products, products, service.NewAMQPPublisher())
	verifySvc := service.NewVerificationService(orders)

	authH := handler.NewAuthHandler(sessionSvc, tokenSvc)
	twoFactorH := handler.NewTwoFactorHandler(twoFactorSvc)
	productH := handler.NewProductHandler(products)
	cartH := handler.NewCartHandler(carts, products)
	orderH := handler.NewOrderHandler(checkoutSvc, orders)
	adminOrderH := handler.NewAdminOrderHandler(checkoutSvc)
	verifyH := handler.NewVerifyHandler(verifySvc)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, productH, verifyH, cacheMW)
	router.RegisterAuth(e, authH, twoFactorH, cfg.JWTSecret, rateMW)
	router.RegisterCustomer(e, cartH, orderH, cfg.JWTSecret)
	router.RegisterAdmin(e, productH, adminOrderH, cfg.JWTSecret)

	// The order consumer keeps reconnecting on its own; losing the
	// broker must not take the API down with it.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
