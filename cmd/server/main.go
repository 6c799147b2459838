package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/prasetyow/warecash/internal/config"
	"github.com/prasetyow/warecash/internal/directory"
	"github.com/prasetyow/warecash/internal/es"
	"github.com/prasetyow/warecash/internal/events"
	"github.com/prasetyow/warecash/internal/handlers"
	"github.com/prasetyow/warecash/internal/logging"
	authmw "github.com/prasetyow/warecash/internal/middleware/auth"
	"github.com/prasetyow/warecash/internal/middleware/loggingmw"
	"github.com/prasetyow/warecash/internal/service"
	"github.com/prasetyow/warecash/internal/session"
	"github.com/prasetyow/warecash/internal/tokens"
	httpserver "github.com/prasetyow/warecash/internal/transport/http"
	pkgconfig "github.com/prasetyow/warecash/pkg/config"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	pkgconfig.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")
	pkgconfig.MustNonEmpty(configuration.REFRESH_SECRET, "REFRESH_SECRET")

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	codec, err := tokens.NewCodec(
		[]byte(configuration.JWT_SECRET),
		[]byte(configuration.REFRESH_SECRET),
	)
	if err != nil {
		log.Fatal(err)
	}

	sessions := session.NewStore(session.Config{
		Addr:     configuration.REDIS_ADDR,
		Password: configuration.REDIS_PASSWORD,
		DB:       configuration.REDIS_DB,
	})

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	var flowLogHandler handlers.FlowLogHandler
	flowLogHandler.DB = db
	flowLogHandler.Producer = producer
	if configuration.ES_URL != "" {
		client, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		flowLogHandler.ES = client
	}

	authService := &service.AuthService{
		DB:       db,
		Dir:      directory.NewClient(configuration.LDAP),
		Codec:    codec,
		Sessions: sessions,
		LDAP:     configuration.LDAP,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:               db,
		Gate:             authmw.NewGate(codec),
		AuthHandler:      &handlers.AuthHandler{Service: authService, Producer: producer},
		WarehouseHandler: &handlers.WarehouseHandler{DB: db},
		CategoryHandler:  &handlers.CategoryHandler{DB: db},
		BudgetHandler:    &handlers.BudgetHandler{DB: db},
		FlowLogHandler:   &flowLogHandler,
		AnalyticsHandler: &handlers.AnalyticsHandler{DB: db},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.HTTP_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := sessions.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
