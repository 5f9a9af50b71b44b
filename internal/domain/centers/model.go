package centers

import "time"

// Room es un consultorio dentro del centro.
type Room struct {
	ID   string
	Name string
}

// Center representa un centro veterinario. Es data de referencia de solo
// lectura para el resto de los módulos; su franja de atención sirve como
// ventana por defecto al generar agenda.
type Center struct {
	ID      string
	Name    string
	Address string
	Email   string
	Phone   string

	// Franja general de atención, formato "HH:MM".
	OpenHM  string
	CloseHM string

	Rooms []Room

	CreatedAt time.Time
	UpdatedAt time.Time
}
