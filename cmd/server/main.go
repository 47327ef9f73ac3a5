// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	attendancehandler "campuspass/internal/attendance/handler"
	attendancemetrics "campuspass/internal/attendance/metrics"
	attendanceservice "campuspass/internal/attendance/service"
	"campuspass/internal/credential"
	eventhandler "campuspass/internal/event/handler"
	eventservice "campuspass/internal/event/service"
	eventstore "campuspass/internal/event/store"
	identityhandler "campuspass/internal/identity/handler"
	identitylockout "campuspass/internal/identity/lockout"
	identityservice "campuspass/internal/identity/service"
	identitystore "campuspass/internal/identity/store"
	jwttoken "campuspass/internal/jwt_token"
	"campuspass/internal/platform/config"
	"campuspass/internal/platform/database"
	"campuspass/internal/platform/httpserver"
	"campuspass/internal/platform/logger"
	platformmetrics "campuspass/internal/platform/metrics"
	platformredis "campuspass/internal/platform/redis"
	registrationcache "campuspass/internal/registration/cache"
	registrationhandler "campuspass/internal/registration/handler"
	registrationmetrics "campuspass/internal/registration/metrics"
	registrationservice "campuspass/internal/registration/service"
	registrationstore "campuspass/internal/registration/store"
	httptransport "campuspass/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "campuspass")

	users := identitystore.NewPostgres(pool)
	events := eventstore.NewPostgres(pool)
	registrations := registrationstore.NewPostgres(pool)

	var counts *registrationcache.CountCache
	if redisClient != nil {
		counts = registrationcache.NewCountCache(redisClient.Client)
	}

	identitySvc := identityservice.New(users, tokens, cfg.AccessTokenTTL)
	eventSvc := eventservice.New(events)
	registrationSvc := registrationservice.New(
		registrations, events, users, credential.NewEncoder(), registrationmetrics.New(), counts)
	attendanceSvc := attendanceservice.New(registrations, events, users, attendancemetrics.New())

	router := httptransport.NewRouter(log, platformmetrics.New(), httptransport.Handlers{
		Identity:     identityhandler.New(identitySvc, log, identitylockout.NewGuard(identitylockout.DefaultConfig())),
		Event:        eventhandler.New(eventSvc, log, tokens),
		Registration: registrationhandler.New(registrationSvc, log, tokens),
		Attendance:   attendancehandler.New(attendanceSvc, log, tokens),
	}, func(r *http.Request) error {
		if err := pool.Ping(r.Context()); err != nil {
			return err
		}
		if redisClient != nil {
			return redisClient.Health(r.Context())
		}
		return nil
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting campuspass", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
