// jobmate-visibility-service
//
// Contact visibility for the candidate report. Decides, per candidate phone
// number, whether recruiters see it in full or redacted, and why:
//   - GET  /reports/candidates   — report page with phone decisions
//   - POST /visibility/evaluate  — decisions for a caller-held snapshot
//   - POST /visibility/contact   — click-through gate for messaging links
//
// The same operations are served over gRPC (VisibilityService). A daily cron
// sweep publishes EVENT_COOLDOWN_EXPIRED to Redis for numbers released today.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"jobmate/visibility-service/internal/config"
	"jobmate/visibility-service/internal/db"
	"jobmate/visibility-service/internal/grpcserver"
	"jobmate/visibility-service/internal/report"
	"jobmate/visibility-service/internal/scheduler"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[visibility-service] Config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[visibility-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[visibility-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[visibility-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[visibility-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[visibility-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[visibility-service] Redis connected ✓")

	// ── Service ──────────────────────────────────────────────────────────────
	store := report.NewPGStore(pool)
	pub := report.NewRedisPublisher(rdb)
	var cache report.Cache
	if cfg.CacheTTL > 0 {
		cache = report.NewRedisCache(rdb, cfg.CacheTTL)
	}
	svc := report.NewService(store, cache, pub, report.Options{
		Location:  cfg.Location,
		PageLimit: cfg.PageLimit,
	})

	// ── Cooldown sweep ───────────────────────────────────────────────────────
	sched := scheduler.New(store, pub, cfg.SweepSpec, cfg.Location)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[visibility-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	report.NewHandler(svc).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// ── gRPC server ──────────────────────────────────────────────────────────
	gsrv := grpc.NewServer()
	grpcserver.RegisterVisibilityServer(gsrv, grpcserver.NewServer(svc))
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[visibility-service] gRPC listen: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[visibility-service] v%s HTTP listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("[visibility-service] v%s gRPC listening on :%s", version, cfg.GRPCPort)
		if err := gsrv.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	// ── Graceful shutdown ────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		log.Println("[visibility-service] Shutting down…")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		gsrv.GracefulStop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[visibility-service] Shutdown error: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("[visibility-service] %v", err)
	}
	log.Println("[visibility-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "visibility-service",
		"version": version,
	})
}
