package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/deeecaaa/cardmarket/internal/config"
	"github.com/deeecaaa/cardmarket/internal/database"
	postgresrepo "github.com/deeecaaa/cardmarket/internal/repository/postgres"
	"github.com/deeecaaa/cardmarket/internal/service"
	"github.com/deeecaaa/cardmarket/internal/transport/http/handlers"
	"github.com/deeecaaa/cardmarket/internal/transport/http/middleware"
	"github.com/deeecaaa/cardmarket/internal/transport/ws"
	"github.com/deeecaaa/cardmarket/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zl, err := logger.Init(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer zl.Sync()
	log := zl.Sugar()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatalw("database connect failed", "err", err)
	}
	defer pool.Close()

	if err := database.Migrate(context.Background(), pool); err != nil {
		log.Fatalw("migrations failed", "err", err)
	}
	log.Infow("connected to database", "host", cfg.DBHost, "db", cfg.DBName)

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	cardRepo := postgresrepo.NewCardRepo(pool)
	treasuryRepo := postgresrepo.NewTreasuryRepo(pool)

	// WebSocket market feed
	hub := ws.NewHub(log)
	go hub.Run()
	notifier := ws.NewHubNotifier(hub)

	// Services
	registryService := service.NewRegistryService(userRepo)
	marketService := service.NewMarketService(cardRepo, treasuryRepo, userRepo, service.MarketConfig{
		CreationFee:       cfg.CreationFee,
		DelistingFee:      cfg.DelistingFee,
		AdminWallet:       cfg.AdminWallet,
		AllowSelfTrade:    cfg.AllowSelfTrade,
		DefaultContentRef: cfg.DefaultContentRef,
	}, notifier)
	catalogService := service.NewCatalogService(userRepo, cardRepo)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	registryHandler := handlers.NewRegistryHandler(registryService, log)
	marketHandler := handlers.NewMarketHandler(marketService, log)
	catalogHandler := handlers.NewCatalogHandler(catalogService, log)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/challenge", authHandler.Challenge)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/registry/users", registryHandler.Register)
	mux.HandleFunc("GET /api/v1/registry/users/{wallet}", registryHandler.GetUser)
	mux.HandleFunc("GET /api/v1/registry/usernames/{name}", registryHandler.UsernameStatus)
	mux.HandleFunc("GET /api/v1/cards/{id}", marketHandler.Get)
	mux.HandleFunc("GET /api/v1/cards/total", marketHandler.Total)
	mux.Handle("GET /api/v1/cards", optionalAuth(http.HandlerFunc(catalogHandler.Browse)))

	// Protected - Registry
	mux.Handle("POST /api/v1/registry/wallets", auth(http.HandlerFunc(registryHandler.AddWallet)))

	// Protected - Marketplace
	mux.Handle("POST /api/v1/cards", auth(http.HandlerFunc(marketHandler.Create)))
	mux.Handle("PATCH /api/v1/cards/{id}/price", auth(http.HandlerFunc(marketHandler.UpdatePrice)))
	mux.Handle("POST /api/v1/cards/{id}/list", auth(http.HandlerFunc(marketHandler.List)))
	mux.Handle("POST /api/v1/cards/{id}/delist", auth(http.HandlerFunc(marketHandler.Delist)))
	mux.Handle("POST /api/v1/cards/{id}/buy", auth(http.HandlerFunc(marketHandler.Buy)))
	mux.Handle("GET /api/v1/me/cards", auth(http.HandlerFunc(catalogHandler.Owned)))
	mux.Handle("GET /api/v1/me/proceeds", auth(http.HandlerFunc(marketHandler.Proceeds)))
	mux.Handle("POST /api/v1/me/proceeds/withdraw", auth(http.HandlerFunc(marketHandler.WithdrawProceeds)))

	// Protected - Admin
	mux.Handle("GET /api/v1/admin/fees", auth(http.HandlerFunc(marketHandler.Fees)))
	mux.Handle("POST /api/v1/admin/fees/withdraw", auth(http.HandlerFunc(marketHandler.WithdrawFees)))

	// Market event feed
	mux.HandleFunc("GET /ws", ws.ServeWS(hub))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Infow("starting server", "addr", addr)
	if err := http.ListenAndServe(addr, middleware.CORS(mux)); err != nil {
		log.Fatalw("server stopped", "err", err)
	}
}
