package entity

import "time"

// Party representa un cliente (parte) al que se factura.
type Party struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Address   string
	GSTIN     string // opcional; 15 caracteres
	StateCode string // código de estado GST de 2 dígitos (ej. "27" Maharashtra)
	CreatedAt time.Time
	UpdatedAt time.Time
}
