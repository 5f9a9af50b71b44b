package router

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "vet-appointments/docs"

	"vet-appointments/internal/adapters/notify/lognotify"
	mem "vet-appointments/internal/adapters/storage/memory"
	pg "vet-appointments/internal/adapters/storage/postgres"
	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/domain/centers"
	"vet-appointments/internal/domain/history"
	"vet-appointments/internal/domain/pets"
	"vet-appointments/internal/domain/slots"
	"vet-appointments/internal/middleware"
	"vet-appointments/internal/platform/logger"
	"vet-appointments/internal/platform/metrics"
	"vet-appointments/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: default lognotify sobre el logger.
	Notifier appointments.Notifier

	// Opcional: default NewFromEnv.
	Logger logger.Logger

	// Opcional: nil = sin métricas de negocio (el endpoint /metrics
	// expone igual las default del proceso).
	Metrics *metrics.AppointmentMetrics
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		petRepo    pets.Repository
		centerRepo centers.Repository
		slotRepo   slots.Repository
		apptRepo   appointments.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres open failed, falling back to memory", map[string]any{"err": err.Error()})
			}
		}
	}

	if db != nil {
		petRepo = pg.NewPetsRepo(db)
		centerRepo = pg.NewCentersRepo(db)
		slotRepo = pg.NewSlotsRepo(db)
		apptRepo = pg.NewAppointmentsRepo(db)
	} else {
		store := mem.NewSchedulingStore()
		petRepo = mem.NewPetRepo()
		centerRepo = mem.NewCenterRepo()
		slotRepo = store.Slots()
		apptRepo = store.Appointments()
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = lognotify.New(log)
	}

	// Services por módulo
	centersSvc := centers.NewService(centerRepo)
	slotsSvc := slots.NewService(slotRepo, centersSvc, opts.Metrics)
	apptsSvc := appointments.NewService(apptRepo, slotRepo, notifier, log, opts.Metrics)
	petsSvc := pets.NewService(petRepo, apptsSvc)
	historySvc := history.NewService(apptsSvc)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc)
	centers.RegisterRoutes(r, centersSvc)
	slots.RegisterRoutes(r, slotsSvc)
	appointments.RegisterRoutes(r, apptsSvc, petsSvc)
	history.RegisterRoutes(r, historySvc, petsSvc)

	return r
}
