// Command shareserver runs one share node (spec §4.2): MODE=share,
// NODE_ID identifies which of the two nodes this process is.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evotemfc/configs"
	"evotemfc/logging"
	"evotemfc/shareserver"
	"evotemfc/store"
)

func main() {
	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("shareserver: config: %v", err)
	}
	if cfg.Mode != configs.ModeShare {
		log.Fatalf("shareserver: MODE must be 'share', got process configured for coordinator")
	}

	lg := logging.New("shareserver." + string(cfg.NodeID))

	ctx := context.Background()
	pool, err := store.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("shareserver: postgres: %v", err)
	}
	defer pool.Close()

	if err := shareserver.InitSchema(ctx, pool); err != nil {
		log.Fatalf("shareserver: schema: %v", err)
	}

	var wal *shareserver.TxnLog
	if dir := os.Getenv("WAL_DIR"); dir != "" {
		wal, err = shareserver.OpenTxnLog(dir)
		if err != nil {
			log.Fatalf("shareserver: wal: %v", err)
		}
		defer wal.Close()
	}

	pgStore := shareserver.NewPostgresStore(pool, configs.Modulus)
	srv := shareserver.NewServer(cfg.NodeID, configs.Modulus, pgStore, wal, cfg.HMACKey)

	mux := http.NewServeMux()
	srv.Routes(mux)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		lg.Infof("listening on %s as node %s", cfg.ListenAddr, cfg.NodeID)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("shareserver: listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lg.Errorf("graceful shutdown failed: %v", err)
	}
}
