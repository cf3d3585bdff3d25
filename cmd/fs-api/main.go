package main

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/metrics"
	"FlowSentry/internal/model"
	"FlowSentry/internal/probe"
	"FlowSentry/internal/query"
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Find the first enabled ClickHouse writer config
	var querier query.Querier
	for _, writerDef := range cfg.Writers {
		if writerDef.Enabled && writerDef.Type == "clickhouse" {
			querier, err = query.NewClickHouseQuerier(writerDef.ClickHouse)
			if err != nil {
				log.Fatalf("Failed to create querier: %v", err)
			}
			break
		}
	}
	if querier == nil {
		log.Println("No enabled ClickHouse writer found in config. Report history is unavailable.")
	}

	collector := metrics.NewReportCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	apiHandler := &APIHandler{querier: querier, collector: collector}

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reportsService := "flowsentry.reports"
	healthSrv.SetServingStatus(reportsService, healthpb.HealthCheckResponse_NOT_SERVING)

	var sub *probe.Subscriber
	if cfg.NATS.Enabled {
		sub, err = probe.NewSubscriber(cfg.NATS)
		if err != nil {
			log.Fatalf("Failed to create NATS subscriber: %v", err)
		}
		err = sub.Start(func(r *model.Report) {
			apiHandler.updateReport(r)
			healthSrv.SetServingStatus(reportsService, healthpb.HealthCheckResponse_SERVING)
		})
		if err != nil {
			log.Fatalf("Failed to subscribe to reports: %v", err)
		}
	}

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: newRouter(apiHandler, registry),
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	lis, err := net.Listen("tcp", cfg.API.GRPCAddr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.API.GRPCAddr, err)
	}
	go func() {
		log.Printf("gRPC health server starting on %s", cfg.API.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	healthSrv.Shutdown()
	if sub != nil {
		sub.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}
