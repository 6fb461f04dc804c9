package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/zorlakov/devconnect/internal/alerts"
	"github.com/zorlakov/devconnect/internal/config"
	"github.com/zorlakov/devconnect/internal/db"
	appmw "github.com/zorlakov/devconnect/internal/middleware"
	"github.com/zorlakov/devconnect/internal/post"
	"github.com/zorlakov/devconnect/internal/profile"
	"github.com/zorlakov/devconnect/internal/stream"
	"github.com/zorlakov/devconnect/internal/user"
	"github.com/zorlakov/devconnect/internal/validate"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = db.EnsureSchema(ctx, pool)
	cancel()
	if err != nil {
		log.Fatalf("schema: %v", err)
	}

	// Background notifications. The API keeps working without a mailer,
	// email tasks are dropped with a log line.
	notes := alerts.NewPostgresRepository(pool)
	mailer, err := alerts.NewMailerFromEnv()
	if err != nil {
		log.Printf("mailer disabled: %v", err)
		mailer = nil
	}
	queue := alerts.NewQueue(cfg.RedisAddr)
	defer queue.Close()
	processor := alerts.NewProcessor(cfg.RedisAddr, notes, mailer)
	processor.Start()
	defer processor.Shutdown()

	users := user.NewPostgresRepository(pool)
	profiles := profile.NewPostgresRepository(pool)
	posts := post.NewPostgresRepository(pool)

	feed := stream.NewHub()

	userHandler := user.NewHandler(users, queue, cfg.JWTSecret)
	profileHandler := profile.NewHandler(profiles, users, profile.NewGithubClient(cfg.GithubToken))
	postHandler := post.NewHandler(posts, users, queue, feed)
	alertHandler := alerts.NewHandler(notes)
	streamHandler := stream.NewHandler(feed, cfg.JWTSecret)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database unavailable"})
		}
		return c.String(http.StatusOK, "ok")
	})

	// Public routes. Credential endpoints are rate limited per IP.
	limiter := echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(10))
	e.POST("/api/users", userHandler.Register, limiter)
	e.POST("/api/auth", userHandler.Login, limiter)
	e.GET("/api/profile", profileHandler.List)
	e.GET("/api/profile/user/:user_id", profileHandler.GetByUserID)
	e.GET("/api/profile/github/:username", profileHandler.Github)
	e.GET("/api/posts/stream", streamHandler.Serve)

	g := e.Group("", appmw.AuthGuard(cfg.JWTSecret))

	g.GET("/api/auth", userHandler.Me)
	g.POST("/api/users/:id/follow", userHandler.Follow)
	g.DELETE("/api/users/:id/unfollow", userHandler.Unfollow)
	g.GET("/api/users/:id/followers", userHandler.Followers)
	g.GET("/api/users/:id/following", userHandler.Following)

	g.GET("/api/profile/me", profileHandler.Me)
	g.POST("/api/profile", profileHandler.Upsert)
	g.DELETE("/api/profile", profileHandler.DeleteAccount)
	g.PUT("/api/profile/experience", profileHandler.AddExperience)
	g.DELETE("/api/profile/experience/:exp_id", profileHandler.DeleteExperience)
	g.PUT("/api/profile/education", profileHandler.AddEducation)
	g.DELETE("/api/profile/education/:edu_id", profileHandler.DeleteEducation)

	g.POST("/api/posts", postHandler.Create)
	g.GET("/api/posts", postHandler.List)
	g.GET("/api/posts/:id", postHandler.Get)
	g.DELETE("/api/posts/:id", postHandler.Delete)
	g.PUT("/api/posts/like/:id", postHandler.Like)
	g.PUT("/api/posts/unlike/:id", postHandler.Unlike)
	g.POST("/api/posts/comment/:id", postHandler.CreateComment)
	g.DELETE("/api/posts/comment/:id/:comment_id", postHandler.DeleteComment)

	g.GET("/api/notifications", alertHandler.List)
	g.POST("/api/notifications/:id/read", alertHandler.MarkRead)

	go func() {
		log.Printf("API server listening on :%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
