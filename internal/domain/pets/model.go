package pets

import "time"

// Species define las especies soportadas.
// @Enum dog, cat, other
const (
	SpeciesDog   = "dog"
	SpeciesCat   = "cat"
	SpeciesOther = "other"
)

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
const (
	SexMale    = "male"
	SexFemale  = "female"
	SexUnknown = "unknown"
)

// Pet representa el perfil de una mascota registrada en la clínica.
// No se borra físicamente si tiene citas: se desactiva (Active=false)
// y su historial queda en modo solo lectura.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species string
	Breed   string
	Sex     string

	BirthDate *time.Time
	WeightKg  float64 // opcional, 0 = no registrado
	Notes     string

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
