package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"teamshooter/config"
	"teamshooter/persist"
	"teamshooter/transport"
)

func main() {
	cfg := config.Load()

	db, err := persist.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("persist.Open: %v", err)
	}
	defer db.Close()

	hub := transport.NewHub(db)
	go hub.Run()

	mux := transport.SetupRoutes(hub)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down...")
	server.Close()
}
