package tg

// Callback button uniques. The payload after the unique carries the page or the stock code.
const (
	HoldingsPage   string = "holdings_page"
	StockDetails   string = "stock_details"
	RefreshSummary string = "refresh_summary"
	StockTrades    string = "stock_trades"
)
