package kardex

// FailureCode clasifica las fallas de negocio esperadas de un movimiento.
// Son resultados, no errores: el caller las muestra línea a línea sin abortar
// el resto de la operación. Solo fallas de infraestructura viajan como error.
type FailureCode string

const (
	FailureProductNotFound   FailureCode = "PRODUCT_NOT_FOUND"
	FailureActorNotFound     FailureCode = "ACTOR_NOT_FOUND"
	FailureInvalidQuantity   FailureCode = "INVALID_QUANTITY"
	FailureInsufficientStock FailureCode = "INSUFFICIENT_STOCK"
)

// MovementOutcome es el resultado de un movimiento, exitoso o no.
// Nunca se descarta información sobre lo que ocurrió: en éxito trae los
// snapshots de stock y el ID del asiento; en falla el código y un mensaje
// legible para la línea afectada.
type MovementOutcome struct {
	ProductID       string      `json:"product_id"`
	Success         bool        `json:"success"`
	Code            FailureCode `json:"code,omitempty"`
	Message         string      `json:"message,omitempty"`
	StockBefore     int64       `json:"stock_before"`
	StockAfter      int64       `json:"stock_after"`
	QuantityApplied int64       `json:"quantity_applied"`
	EntryID         string      `json:"entry_id,omitempty"`
}

func failedOutcome(productID string, code FailureCode, msg string) MovementOutcome {
	return MovementOutcome{ProductID: productID, Success: false, Code: code, Message: msg}
}

// BulkOutcome agrega los resultados por ítem de un lote de movimientos.
//
// Contrato de fallas parciales: las fallas de negocio de un ítem no escriben
// nada y no afectan a los demás ítems. Un error de infraestructura a mitad
// del lote aborta y revierte la transacción completa y la llamada devuelve
// únicamente error: ningún ítem se reporta como confirmado y luego se revierte.
type BulkOutcome struct {
	Successful      []MovementOutcome `json:"successful"`
	Failed          []MovementOutcome `json:"failed"`
	TotalProcessed  int               `json:"total_processed"`
	TotalSuccessful int               `json:"total_successful"`
	TotalFailed     int               `json:"total_failed"`
}
