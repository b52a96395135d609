package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	libraryapi "wiboard-complete/handlers/api/library"
	"wiboard-complete/handlers/api/photos"
	"wiboard-complete/handlers/api/share"
	"wiboard-complete/handlers/auth"
	authMiddleware "wiboard-complete/middleware"
	"wiboard-complete/stores"
)

func setupRouter(store stores.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Origin", "Host", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Route("/api/v2", func(r chi.Router) {
		// Personal library, protected by JWT auth.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.AuthJWT)
			r.Route("/library", func(r chi.Router) {
				r.Route("/collections", func(r chi.Router) {
					r.Get("/", libraryapi.HandleListCollections(store))
					r.Route("/{name}", func(r chi.Router) {
						r.Delete("/", libraryapi.HandleDeleteCollection(store))
						r.Put("/images", libraryapi.HandleSaveImage(store))
						r.Delete("/images", libraryapi.HandleRemoveImage(store))
					})
				})
				r.Delete("/images", libraryapi.HandleUnsave(store))
				r.Get("/saved", libraryapi.HandleSavedState(store))
				r.Post("/saved/toggle", libraryapi.HandleToggleSave(store))
				r.Route("/likes", func(r chi.Router) {
					r.Get("/", libraryapi.HandleListLikes(store))
					r.Post("/", libraryapi.HandleLike(store))
					r.Delete("/", libraryapi.HandleUnlike(store))
				})
			})
			r.Post("/share", share.HandleCreate(store))
		})

		// Image source proxy and shared snapshots are readable without a
		// session.
		r.Route("/photos", func(r chi.Router) {
			r.Get("/search", photos.HandleSearch())
			r.Get("/{id}", photos.HandleGetPhoto())
		})
		r.Get("/share/{id}", share.HandleGet(store))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", auth.HandleLogin)
		r.Get("/callback", auth.HandleCallback)
	})

	return r
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	auth.InitAuth()
	photos.Init()
	store := stores.GetStore()

	r := setupRouter(store)

	server := &http.Server{
		Addr:    *listenAddress,
		Handler: r,
	}

	go func() {
		logrus.WithField("addr", *listenAddress).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-signalC

	logrus.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Forced shutdown")
	}
}
