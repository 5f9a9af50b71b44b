package metrics

import "github.com/prometheus/client_golang/prometheus"

// AppointmentMetrics expone contadores del ciclo de vida de citas.
// Todos los métodos son nil-safe: con metrics deshabilitadas se pasa nil.
type AppointmentMetrics struct {
	transitions    *prometheus.CounterVec
	bookingDenied  *prometheus.CounterVec
	slotsGenerated prometheus.Counter
}

func NewAppointmentMetrics(reg prometheus.Registerer) *AppointmentMetrics {
	m := &AppointmentMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetappt",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Transiciones de estado de citas aplicadas",
		}, []string{"to"}),
		bookingDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetappt",
			Subsystem: "appointments",
			Name:      "booking_denied_total",
			Help:      "Reservas rechazadas por regla o contención",
		}, []string{"reason"}),
		slotsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vetappt",
			Subsystem: "slots",
			Name:      "generated_total",
			Help:      "Slots generados y persistidos",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitions, m.bookingDenied, m.slotsGenerated)
	return m
}

func (m *AppointmentMetrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to).Inc()
}

func (m *AppointmentMetrics) ObserveBookingDenied(reason string) {
	if m == nil {
		return
	}
	m.bookingDenied.WithLabelValues(reason).Inc()
}

func (m *AppointmentMetrics) ObserveSlotsGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.slotsGenerated.Add(float64(n))
}
