package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/dragpoint/geodrag/internal/auth"
	"github.com/dragpoint/geodrag/internal/collab"
	"github.com/dragpoint/geodrag/internal/config"
	"github.com/dragpoint/geodrag/internal/db"
	"github.com/dragpoint/geodrag/internal/library"
	mw "github.com/dragpoint/geodrag/internal/middleware"
	"github.com/dragpoint/geodrag/internal/render"
	"github.com/dragpoint/geodrag/internal/snapshot"
	"github.com/dragpoint/geodrag/internal/typeid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir, err := library.OpenDir(cfg.ConstructionDir, slog.Default())
	if err != nil {
		slog.Error("open construction dir", "error", err)
		os.Exit(1)
	}
	defer dir.Close()
	if err := dir.Watch(250 * time.Millisecond); err != nil {
		slog.Warn("construction dir not watched", "error", err)
	}

	stores := library.Chain{dir, library.Builtin{}}
	var writer library.Writer = dir

	// Postgres is optional; without it new constructions go to the directory
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := library.NewPGStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("create schema", "error", err)
			os.Exit(1)
		}
		stores = library.Chain{pg, dir, library.Builtin{}}
		writer = pg
	}

	lib := library.NewService(stores, writer, slog.Default())
	libHandler := library.NewHandler(lib)

	authService := auth.NewService(cfg.TokenSecret, cfg.TokenTTL)
	authHandler := auth.NewHandler(authService, func(ctx context.Context, room string) error {
		_, err := lib.Get(ctx, room)
		return err
	})

	snapHandler := snapshot.NewHandler(lib, render.Options{
		Width:    cfg.SnapshotWidth,
		Height:   cfg.SnapshotHeight,
		FontPath: cfg.FontPath,
		Grid:     true,
	})

	hub := collab.NewHub(lib.Compile, slog.Default())
	hubCtx, stopHub := context.WithCancel(ctx)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(hubCtx)
		close(hubDone)
	}()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/constructions", libHandler.List).Methods("GET", "OPTIONS")
	r.HandleFunc("/constructions", libHandler.Create).Methods("POST", "OPTIONS")
	r.HandleFunc("/constructions/{id}", libHandler.Get).Methods("GET", "OPTIONS")
	r.HandleFunc("/constructions/{id}", libHandler.Delete).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/constructions/{id}/snapshot.png", snapHandler.Snapshot).Methods("GET")

	r.HandleFunc("/rooms/{id}/token", authHandler.IssueToken).Methods("POST", "OPTIONS")

	// WebSocket endpoint
	r.Handle("/ws/room/{id}", authService.RequireRoomToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, cfg.Origins())
	})))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		stopHub()
		<-hubDone

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "constructions", cfg.ConstructionDir, "postgres", cfg.DatabaseURL != "")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, origins []string) {
	roomID := mux.Vars(r)["id"]
	sessionID := auth.SessionIDFromContext(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(origins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(hub, conn, roomID, sessionID, typeid.NewClientID())
	if err := hub.Register(client); err != nil {
		slog.Warn("join room", "room", roomID, "error", err)
		conn.Close(websocket.StatusPolicyViolation, "room unavailable")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// originPatterns strips the scheme, which websocket origin patterns do not
// carry.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "https://")
		out = append(out, strings.TrimPrefix(o, "http://"))
	}
	return out
}
