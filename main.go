package main

import (
	"context"
	"log"

	"paper-trader/config"
	"paper-trader/database"
	"paper-trader/handlers"
	"paper-trader/middleware"
	"paper-trader/quote"
	"paper-trader/session"
	"paper-trader/trade"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config: ", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("open database: ", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("get database instance: ", err)
	}
	defer sqlDB.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("connect to redis: ", err)
	}
	defer rdb.Close()

	sessions := session.NewRedisStore(rdb, cfg.SessionSecret, cfg.SessionTTL)
	quotes := quote.NewClient(cfg.QuoteBaseURL, cfg.QuoteAPIKey, cfg.QuoteTimeout)
	engine := trade.NewEngine(db, quotes)
	aggregator := trade.NewAggregator(db, quotes)

	router := gin.Default()
	router.Use(middleware.NoCache())
	router.LoadHTMLGlob("templates/*.html")

	authHandler := handlers.NewAuthHandler(db, sessions, cfg.StartingCash, cfg.SessionTTL)
	tradeHandler := handlers.NewTradeHandler(engine, aggregator)
	portfolioHandler := handlers.NewPortfolioHandler(aggregator)
	quoteHandler := handlers.NewQuoteHandler(quotes)

	// Public routes
	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)
	router.GET("/register", authHandler.RegisterPage)
	router.POST("/register", authHandler.Register)
	router.GET("/logout", authHandler.Logout)

	// Protected routes
	auth := router.Group("/")
	auth.Use(middleware.RequireLogin(sessions))
	{
		auth.GET("/", portfolioHandler.Index)
		auth.GET("/buy", tradeHandler.BuyPage)
		auth.POST("/buy", tradeHandler.Buy)
		auth.GET("/sell", tradeHandler.SellPage)
		auth.POST("/sell", tradeHandler.Sell)
		auth.GET("/history", portfolioHandler.History)
		auth.GET("/graph", portfolioHandler.Graph)
		auth.GET("/quote", quoteHandler.QuotePage)
		auth.POST("/quote", quoteHandler.Quote)
		auth.GET("/quoted", quoteHandler.Quoted)
	}

	if err := router.Run(cfg.Addr); err != nil {
		log.Fatal("run server: ", err)
	}
}
