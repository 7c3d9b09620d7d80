package ports

// MetricsRecorder puerto para contadores de negocio (Prometheus en producción).
type MetricsRecorder interface {
	StockMovement(movementType string, quantity int64)
	StockRejected(reason string)
	GoodsOutTransition(status string)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) StockMovement(string, int64) {}
func (NopMetrics) StockRejected(string)        {}
func (NopMetrics) GoodsOutTransition(string)   {}
