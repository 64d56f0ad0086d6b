// Command coordinator runs the coordinator role (spec §4.3, §4.4):
// MODE=coordinator, driving ballot casts and tally reconstruction across
// the two share nodes named by SHARE_NODE_A_URL / SHARE_NODE_B_URL.
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
	"evotemfc/coordinator"
	"evotemfc/fingerprintbuf"
	"evotemfc/locks"
	"evotemfc/logging"
	"evotemfc/registry"
	"evotemfc/store"
	"evotemfc/transport"
)

func main() {
	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("coordinator: config: %v", err)
	}
	if cfg.Mode != configs.ModeCoordinator {
		log.Fatalf("coordinator: MODE must be 'coordinator', got process configured for share")
	}

	lg := logging.New("coordinator")
	ctx := context.Background()

	pool, err := store.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("coordinator: postgres: %v", err)
	}
	defer pool.Close()
	if err := coordinator.InitSchema(ctx, pool); err != nil {
		log.Fatalf("coordinator: schema: %v", err)
	}

	reg, err := registry.OpenMongoRegistry(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("coordinator: mongo registry: %v", err)
	}
	defer reg.Close(ctx)

	var intents *coordinator.IntentLog
	if dir := os.Getenv("INTENT_WAL_DIR"); dir != "" {
		intents, err = coordinator.OpenIntentLog(dir)
		if err != nil {
			log.Fatalf("coordinator: intent log: %v", err)
		}
		defer intents.Close()
	}

	client := transport.NewClient(cfg.HMACKey, cfg.HTTPTimeout)
	nodeA := coordinator.NewShareNode(string(configs.NodeA), cfg.ShareNodeAURL, client)
	nodeB := coordinator.NewShareNode(string(configs.NodeB), cfg.ShareNodeBURL, client)

	localStore := coordinator.NewPostgresStore(pool)
	voterLocks := locks.NewVoterLocks()

	c := coordinator.New(reg, nodeA, nodeB, localStore, voterLocks, intents, configs.Modulus, cfg.HTTPTimeout)

	mux := http.NewServeMux()
	coordinator.NewServer(c).Routes(mux)
	fingerprintbuf.NewServer(locks.NewFingerprintBuffer()).Routes(mux)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		lg.Infof("listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("coordinator: listen: %v", err)
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
