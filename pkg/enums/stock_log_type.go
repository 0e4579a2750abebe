package enums

// StockLogType classifies a stock_logs row. The logged quantity is always a
// positive magnitude and the type carries the sign.
type StockLogType string

const (
	StockLogTypeAdd    StockLogType = "ADD"
	StockLogTypeRemove StockLogType = "REMOVE"
	StockLogTypeAdjust StockLogType = "ADJUST"
)
