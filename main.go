package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"

	"boiadda-backend/internal/book_mgmt/activity"
	"boiadda-backend/internal/book_mgmt/borrows"
	"boiadda-backend/internal/book_mgmt/catalog"
	"boiadda-backend/internal/book_mgmt/donations"
	"boiadda-backend/internal/members"
	"boiadda-backend/internal/platform/auth"
	"boiadda-backend/internal/platform/db"
	"boiadda-backend/internal/platform/seed"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	if cfg.SeedDemo {
		if err := seed.Run(context.Background(), conn); err != nil {
			log.Fatal(err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOriginList(),
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/readyz", func(c *gin.Context) {
		if err := conn.PingContext(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "db unreachable")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	secret := []byte(cfg.Auth.Secret)
	ttl := time.Duration(cfg.Auth.TokenTTLMins) * time.Minute
	guard := members.NewGuard()

	authSvc := auth.NewService(conn, secret, ttl)
	borrowSvc := borrows.NewService(conn, guard)
	donationSvc := donations.NewService(conn, guard)

	// /api/v1
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, authSvc)
	catalog.RegisterRoutes(api, catalog.NewService(conn))
	activity.RegisterRoutes(api, activity.NewService(conn))
	members.RegisterRoutes(api, members.NewService(conn))

	// ログイン必須
	authed := api.Group("")
	authed.Use(auth.RequireAuth(secret))
	auth.RegisterAuthedRoutes(authed, authSvc)
	borrows.RegisterRoutes(authed, borrowSvc)
	donations.RegisterRoutes(authed, donationSvc)

	// 管理者のみ
	admin := api.Group("/admin")
	admin.Use(auth.RequireAuth(secret), auth.RequireRole(string(members.RoleAdmin)))
	borrows.RegisterAdminRoutes(admin, borrowSvc)
	donations.RegisterAdminRoutes(admin, donationSvc)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
