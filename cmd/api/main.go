package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"vet-appointments/internal/adapters/auth/identity"
	"vet-appointments/internal/adapters/notify/webhook"
	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/platform/logger"
	"vet-appointments/internal/platform/metrics"
	"vet-appointments/internal/ports/auth"
	"vet-appointments/internal/router"
)

func main() {
	_ = godotenv.Load() // .env opcional en dev

	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Verifier real solo si hay servicio de identidad configurado;
	// sin él queda el modo dev (X-Debug-User-ID / X-Debug-Role).
	var verifier auth.AuthVerifier
	if baseURL := os.Getenv("AUTH_URL"); baseURL != "" {
		v, err := identity.NewVerifier(identity.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("AUTH_API_KEY"),
		})
		if err != nil {
			log.Error("identity verifier init failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		verifier = v
	}

	var notifier appointments.Notifier
	if url := os.Getenv("NOTIFY_WEBHOOK_URL"); url != "" {
		notifier = webhook.New(webhook.Config{
			URL:   url,
			Token: os.Getenv("NOTIFY_WEBHOOK_TOKEN"),
		})
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Notifier:     notifier,
		Logger:       log,
		Metrics:      metrics.NewAppointmentMetrics(nil),
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
