package stock

// Status clasifica la disponibilidad de un producto.
type Status string

const (
	StatusInStock    Status = "in_stock"
	StatusLowStock   Status = "low_stock"
	StatusOutOfStock Status = "out_of_stock"
	StatusOverstock  Status = "overstock"
)

// Umbrales por defecto cuando el producto no define los suyos.
const (
	DefaultLowThreshold       int64 = 5
	DefaultOverstockThreshold int64 = 100
)

// Classify devuelve el estado según la disponibilidad y los umbrales (función pura).
// out_of_stock: 0; low_stock: 0 < a ≤ low; overstock: a > over; si no, in_stock.
func Classify(available, lowThreshold, overstockThreshold int64) Status {
	switch {
	case available <= 0:
		return StatusOutOfStock
	case available <= lowThreshold:
		return StatusLowStock
	case available > overstockThreshold:
		return StatusOverstock
	default:
		return StatusInStock
	}
}

// AlertKind mapea un estado al tipo de alerta que debe quedar activa.
// ok=false para in_stock (toda alerta activa debe cerrarse).
func AlertKind(s Status) (kind string, ok bool) {
	switch s {
	case StatusLowStock:
		return "low_stock", true
	case StatusOutOfStock:
		return "out_of_stock", true
	case StatusOverstock:
		return "overstock", true
	}
	return "", false
}
