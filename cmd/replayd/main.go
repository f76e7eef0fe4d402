package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/config"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/metrics"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/rpc"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/state"
)

// #region main
func main() {
	configPath := flag.String("config", "", "path to YAML config (REPLAY_* env vars override)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var store *state.Store
	if cfg.Persist {
		store, err = state.NewStore(cfg.DB)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		defer store.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	replaySrv := rpc.NewServer(store, orchestrator.Options{
		Observer:     m,
		HistoryLimit: cfg.HistoryLimit,
	})
	grpcSrv := grpc.NewServer()
	rpc.RegisterReplayServiceServer(grpcSrv, replaySrv)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", cfg.GRPCAddr, err)
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[METRICS] server error: %v", err)
			}
		}()
	}

	go func() {
		if err := grpcSrv.Serve(lis); err != nil {
			log.Printf("[RPC] serve error: %v", err)
		}
	}()
	log.Printf("[RPC] replay service ready grpc=%s metrics=%s persist=%v db=%s history_limit=%d",
		cfg.GRPCAddr, cfg.MetricsAddr, cfg.Persist, cfg.DB, cfg.HistoryLimit)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("[RPC] shutting down")

	grpcSrv.GracefulStop()
	replaySrv.Shutdown()
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(ctx); err != nil {
			log.Printf("[METRICS] shutdown error: %v", err)
		}
	}
}
// #endregion main
