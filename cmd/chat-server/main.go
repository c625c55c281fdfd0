package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"uk.co.dudmesh.groupchat/internal/boot"
	"uk.co.dudmesh.groupchat/internal/handlers"
	"uk.co.dudmesh.groupchat/internal/metrics"
	"uk.co.dudmesh.groupchat/internal/service/access"
	"uk.co.dudmesh.groupchat/internal/service/chat"
)

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	logger := log.New("chat")
	logger.SetLevel(log.INFO)
	if config.IsDevelopment() {
		logger.SetLevel(log.DEBUG)
	}

	shutdownTracing := func(context.Context) error { return nil }
	if config.TracingEnabled() {
		shutdownTracing, err = setupTracing(context.Background(), config.TraceEndpoint)
		if err != nil {
			log.Fatalf("tracing: %+v", err)
		}
	}

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("metrics: %+v", err)
	}

	chatService, err := chat.NewFromConfig(config, m, logger)
	if err != nil {
		log.Fatalf("chat: %+v", err)
	}
	defer chatService.Close()

	throttle, err := access.NewThrottle(config.Access.MaxFailures, config.Access.FailureWindow)
	if err != nil {
		log.Fatalf("throttle: %+v", err)
	}

	ipExtractor, err := handlers.IPExtractor(config.Server.TrustedProxies)
	if err != nil {
		log.Fatalf("trusted proxies: %+v", err)
	}

	server := echo.New()
	server.HideBanner = true
	server.IPExtractor = ipExtractor
	server.Use(middleware.BodyLimit(config.Server.BodyLimit))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("groupchat"))
	if config.TracingEnabled() {
		server.Use(otelecho.Middleware(serviceName))
	}
	server.Use(middleware.Recover())
	origins := strings.Split(config.Server.Origins, ",")
	server.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  origins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "If-None-Match", echo.HeaderXRequestID},
		ExposeHeaders: []string{"ETag"},
	}))

	server.Logger.SetLevel(log.INFO)
	server.Server.ReadHeaderTimeout = 10 * time.Second

	server.Static("/static", filepath.Join(config.UIDir, "static"))

	t, err := NewTemplate(config.UIDir)
	if err != nil {
		log.Fatalf("templates: %+v", err)
	}
	defer t.Close()
	if config.IsDevelopment() {
		if err := t.Watch(); err != nil {
			log.Errorf("watching templates: %+v", err)
		}
	}
	server.Renderer = t

	server.GET("/", func(c echo.Context) error {
		return c.Render(http.StatusOK, "app.html", echo.Map{
			"PollInterval": config.StreamInterval.Milliseconds(),
		})
	})
	server.GET("/healthz", handlers.Health)

	streams := make(chan struct{})
	groups := server.Group("/groups/:groupId")
	groups.POST("/access", handlers.CheckGroupAccess(chatService, throttle))
	groups.GET("/messages", handlers.ListMessages(chatService))
	groups.POST("/messages", handlers.PostText(chatService))
	groups.POST("/attachments", handlers.PostAttachment(chatService))
	groups.GET("/stream", handlers.Stream(chatService, config.StreamInterval, origins, streams))

	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.GET("/metrics", echoprometheus.NewHandler())
	go func() {
		if err := metricsServer.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	close(streams)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Error(err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		server.Logger.Error(err)
	}
	if err := shutdownTracing(ctx); err != nil {
		server.Logger.Error(err)
	}
}
