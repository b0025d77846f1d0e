package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"github.com/pixeltrade/pixeltrade/internal/boot"
	"github.com/pixeltrade/pixeltrade/internal/handlers"
	"github.com/pixeltrade/pixeltrade/internal/service/chat"
	"github.com/pixeltrade/pixeltrade/internal/service/trade"
	"github.com/pixeltrade/pixeltrade/internal/service/user"
	"github.com/pixeltrade/pixeltrade/internal/session"
	"github.com/pixeltrade/pixeltrade/internal/tradestore"
)

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	store, err := tradestore.Open(config.DatabaseFile)
	if err != nil {
		log.Fatalf("opening store: %+v", err)
	}
	defer store.Close()

	userService := user.New(store)
	tradeService := trade.New(store)
	chatService := chat.New(store)

	server := echo.New()
	server.Use(middleware.BodyLimit("1M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("pixeltrade"))
	server.Use(middleware.Recover())

	server.Logger.SetLevel(log.INFO)

	headers := []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization}
	server.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{config.Server.Origins},
		AllowHeaders:     headers,
		AllowCredentials: true,
	}))

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	server.POST("/api/auth/register", handlers.Register(userService))
	server.POST("/api/auth/login", handlers.Login(userService, config.SessionSecret))

	authenticated := server.Group("/api", session.Middleware(config.SessionSecret))
	authenticated.POST("/auth/logout", handlers.Logout())
	authenticated.GET("/auth/me", handlers.Me(userService))
	authenticated.PATCH("/auth/me", handlers.UpdateMe(userService))
	authenticated.POST("/auth/change-password", handlers.ChangePassword(userService))

	authenticated.POST("/transactions", handlers.CreateTransaction(tradeService))
	authenticated.POST("/transactions/join", handlers.JoinTransaction(tradeService))
	authenticated.GET("/transactions/recent", handlers.RecentTransactions(tradeService))
	authenticated.GET("/transactions/public", handlers.PublicTransactions(tradeService))
	authenticated.GET("/transactions/history", handlers.TransactionHistory(tradeService))
	authenticated.GET("/transactions/:id", handlers.TransactionDetail(tradeService))
	authenticated.POST("/transactions/:id/account", handlers.SendAccountDetails(tradeService))
	authenticated.POST("/transactions/:id/confirm", handlers.ConfirmReceipt(tradeService))
	authenticated.POST("/transactions/:id/cancel", handlers.CancelTransaction(tradeService))
	authenticated.POST("/transactions/:id/report", handlers.ReportTransaction(tradeService))
	authenticated.GET("/transactions/:id/messages", handlers.ListMessages(chatService))
	authenticated.POST("/transactions/:id/messages", handlers.PostMessage(chatService))

	authenticated.GET("/users/stats", handlers.UserStats(userService))

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
