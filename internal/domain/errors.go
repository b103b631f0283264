package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrConsistency indica divergencia entre el ledger de movimientos y el contador
	// de stock; el producto queda congelado hasta reconciliación manual.
	ErrConsistency = errors.New("inconsistencia entre ledger y contador de stock")
)
