package entity

// Warehouse representa una bodega o sucursal donde se almacenan lotes.
type Warehouse struct {
	Name    string
	Company string
}
