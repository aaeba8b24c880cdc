package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/config"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/gridstore"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/mapserver"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/monitor"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/paint"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/submapclient"
)

var (
	devMode       = flag.Bool("dev", false, "Serve synthetic submaps instead of querying a map builder")
	listen        = flag.String("listen", "", "Listen address (overrides HTTP_ADDR)")
	resolution    = flag.Float64("resolution", 0, "Grid cell size in metres (overrides GRID_RESOLUTION)")
	publishPeriod = flag.Duration("publish_period", 0, "Interval between grid publishes (overrides GRID_PUBLISH_PERIOD)")
	dbPath        = flag.String("db", "", "Path to the grid snapshot database (overrides DB_PATH)")
)

func main() {
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *listen != "" {
		cfg.HTTP.Addr = *listen
	}
	if *resolution != 0 {
		cfg.Grid.Resolution = *resolution
	}
	if *publishPeriod != 0 {
		cfg.Grid.PublishPeriod = *publishPeriod
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}

	var synthetic *submapclient.SyntheticFetcher
	var fetcher occupancy.TextureFetcher
	if *devMode {
		synthetic = submapclient.NewSyntheticFetcher()
		fetcher = synthetic
		log.Print("[Main] dev mode: serving synthetic submaps")
	} else {
		if cfg.Submap.QueryURL == "" {
			log.Fatal("SUBMAP_QUERY_URL is required outside dev mode")
		}
		fetcher = submapclient.New(cfg.Submap.QueryURL, cfg.Submap.QueryTimeout)
	}

	node := occupancy.NewNode(fetcher, paint.New(), cfg.Grid.Resolution, cfg.Grid.PublishPeriod)

	recorder := monitor.NewRecorder(0)
	node.SetCycleObserver(recorder)

	srv := mapserver.NewServer(node)
	srv.SetRecorder(recorder)
	node.AddSink(srv)

	var store *gridstore.Store
	if cfg.DB.Path != "" {
		store, err = gridstore.NewStore(cfg.DB.Path)
		if err != nil {
			log.Fatalf("failed to open grid database: %v", err)
		}
		defer store.Close()
		srv.SetStore(store)
		node.AddSink(gridstore.NewSnapshotSink(store, cfg.DB.SnapshotInterval))
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// render loop
	wg.Add(1)
	go func() {
		defer wg.Done()
		node.Run(ctx)
		log.Print("render routine terminated")
	}()

	// In dev mode there is no upstream posting submap lists, so feed the node
	// a growing synthetic trajectory ourselves.
	if synthetic != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			count := 1
			for {
				select {
				case <-ctx.Done():
					log.Print("synthetic feed terminated")
					return
				case <-ticker.C:
					node.HandleSubmapList(synthetic.SyntheticSubmapList("map", count))
					if count < 16 {
						count++
					}
				}
			}
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := srv.ServeMux()
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("got request %q", r.URL.Path)
			mux.ServeHTTP(w, r)
		})

		server := &http.Server{
			Addr:        cfg.HTTP.Addr,
			Handler:     h,
			ReadTimeout: cfg.HTTP.ReadTimeout,
			IdleTimeout: cfg.HTTP.IdleTimeout,
			// WriteTimeout stays zero so /map/stream can hold its
			// connection open.
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}

		go func() {
			log.Printf("[Main] listening on %s", cfg.HTTP.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
