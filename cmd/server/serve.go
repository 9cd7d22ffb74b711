package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"doctor-booking-api/internal/auth"
	"doctor-booking-api/internal/booking"
	"doctor-booking-api/internal/config"
	"doctor-booking-api/internal/gateway"
	"doctor-booking-api/internal/handler"
	"doctor-booking-api/internal/jobs"
	"doctor-booking-api/internal/logging"
	"doctor-booking-api/internal/metrics"
	"doctor-booking-api/internal/middleware"
	"doctor-booking-api/internal/rpc"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC server and the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	log := logging.New(cfg.LogLevel, cfg.IsDev())
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx := context.Background()

	// storage
	st, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer st.Close(context.Background())
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("backend", cfg.StoreBackend).Msg("store ready")

	opts := []booking.Option{booking.WithLogger(log)}
	locker, rdb, err := openLocker(ctx, cfg, log)
	if err != nil {
		return err
	}
	if locker != nil {
		defer rdb.Close()
		opts = append(opts, booking.WithLocker(locker))
	}
	svc := booking.NewService(st, st, opts...)

	iss := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	h := handler.New(svc, st, iss, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	// grpc server
	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rl.Stop()
	srv := grpc.NewServer(
		grpc.ForceServerCodec(rpc.Codec{}),
		grpc.ChainUnaryInterceptor(
			middleware.Recovery(log),
			middleware.Logging(log),
			middleware.RateLimit(rl),
			middleware.Auth(iss),
		),
	)
	rpc.RegisterBookingServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("grpc listening")
		if err := srv.Serve(lis); err != nil {
			log.Error().Err(err).Msg("grpc serve")
		}
	}()

	// the grpc-web bridge forwards to the server above over loopback
	conn, err := grpc.NewClient("localhost:"+cfg.GRPCPort, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	defer conn.Close()

	engine := gateway.New(gateway.Config{
		Handler:       h,
		Issuer:        iss,
		Limiter:       rl,
		Conn:          conn,
		Gatherer:      reg,
		Logger:        log,
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: !cfg.IsDev(),
	})
	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http serve")
		}
	}()

	var sweeper *jobs.Sweeper
	if cfg.SweepEnabled {
		sweeper = jobs.NewSweeper(st, svc, log)
		if err := sweeper.Start(cfg.SweepSchedule); err != nil {
			return fmt.Errorf("sweeper schedule %q: %w", cfg.SweepSchedule, err)
		}
		log.Info().Str("schedule", cfg.SweepSchedule).Msg("expiry sweeper started")
	}

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	srv.GracefulStop()
	if sweeper != nil {
		sweeper.Stop()
	}
	return nil
}
