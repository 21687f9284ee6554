package universe

import (
	"context"

	"ScreenPull/internal/domain/models"
	"ScreenPull/internal/domain/repository"
)

// nifty50 is the NSE large-cap universe. Listed statically; NSE publishes
// rebalances twice a year, so this is refreshed with releases rather than
// fetched live.
var nifty50 = []string{
	"RELIANCE", "TCS", "HDFCBANK", "INFY", "HINDUNILVR",
	"ICICIBANK", "KOTAKBANK", "SBIN", "BHARTIARTL", "ITC",
	"ASIANPAINT", "LT", "AXISBANK", "MARUTI", "SUNPHARMA",
	"TITAN", "ULTRACEMCO", "NESTLEIND", "WIPRO", "M&M",
	"NTPC", "HCLTECH", "POWERGRID", "TATAMOTORS", "BAJFINANCE",
	"TECHM", "ONGC", "TATASTEEL", "ADANIPORTS", "COALINDIA",
	"INDUSINDBK", "DRREDDY", "GRASIM", "JSWSTEEL", "HINDALCO",
	"CIPLA", "EICHERMOT", "HEROMOTOCO", "BAJAJFINSV", "UPL",
	"BRITANNIA", "DIVISLAB", "APOLLOHOSP", "TATACONSUM", "BAJAJ-AUTO",
	"HDFCLIFE", "SBILIFE", "BPCL", "SHREECEM", "IOC",
}

var niftyNext50 = []string{
	"ADANIENT", "ADANIGREEN", "ADANIPOWER", "AMBUJACEM", "BANKBARODA",
	"BERGEPAINT", "BIOCON", "BOSCHLTD", "CANBK", "CHOLAFIN",
	"COLPAL", "DABUR", "DLF", "GAIL", "GODREJCP",
	"HAVELLS", "ICICIPRULI", "IDEA", "INDIGO", "JINDALSTEL",
	"LICI", "MARICO", "MCDOWELL-N", "MUTHOOTFIN", "NAUKRI",
	"PAGEIND", "PEL", "PIDILITIND", "PIIND", "PNB",
	"SAIL", "SIEMENS", "SRF", "TATAPOWER", "TORNTPHARM",
	"TRENT", "TVSMOTOR", "VEDL", "ZOMATO", "ZYDUSLIFE",
}

var midAndSmallCap = []string{
	"AARTIIND", "ABCAPITAL", "ALKEM", "APLLTD", "ASTRAL",
	"BALKRISIND", "BATAINDIA", "BEL", "BHARATFORG", "BHEL",
	"COFORGE", "CONCOR", "CROMPTON", "CUMMINSIND", "DEEPAKNTR",
	"ESCORTS", "EXIDEIND", "FEDERALBNK", "GLENMARK", "GMRINFRA",
	"GRANULES", "IDFCFIRSTB", "IGL", "INDHOTEL", "IRCTC",
	"LAURUSLABS", "LICHSGFIN", "MANAPPURAM", "MFSL", "MPHASIS",
	"NATIONALUM", "NMDC", "OBEROIRLTY", "PERSISTENT", "PETRONET",
	"POLYCAB", "RAMCOCEM", "RECLTD", "SUNTV", "SYNGENE",
	"TATACHEM", "TATACOMM", "VOLTAS", "ZEEL",
}

var fnoStocks = []string{
	"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK",
	"SBIN", "AXISBANK", "BAJFINANCE", "TATAMOTORS", "TATASTEEL",
	"MARUTI", "LT", "HCLTECH", "SUNPHARMA", "TITAN",
	"HINDALCO", "JSWSTEEL", "ADANIPORTS", "INDUSINDBK", "VEDL",
	"CANBK", "PNB", "BHEL", "SAIL", "GMRINFRA",
}

// sp500Sample are US listings screened without an exchange suffix.
var sp500Sample = []string{
	"AAPL", "MSFT", "AMZN", "NVDA", "GOOGL",
	"META", "TSLA", "BRK-B", "UNH", "JNJ",
	"V", "XOM", "WMT", "JPM", "PG",
	"MA", "HD", "CVX", "LLY", "ABBV",
}

// IndexInfo describes one selectable universe for the API surface.
type IndexInfo struct {
	Code  models.IndexType `json:"code"`
	Name  string           `json:"name"`
	Count int              `json:"count"`
}

// StaticProvider resolves index codes to symbol lists from embedded data.
type StaticProvider struct{}

// NewStaticProvider creates a provider backed by the embedded lists.
func NewStaticProvider() *StaticProvider { return &StaticProvider{} }

// Resolve returns the ordered symbol list for the given index code.
func (p *StaticProvider) Resolve(_ context.Context, index models.IndexType) ([]string, error) {
	switch index {
	case models.IndexByStockName:
		// Explicit symbols come with the request; nothing to resolve.
		return nil, nil
	case models.IndexNifty50:
		return clone(nifty50), nil
	case models.IndexNiftyNext50:
		return clone(niftyNext50), nil
	case models.IndexNifty100:
		return concat(nifty50, niftyNext50), nil
	case models.IndexNifty200, models.IndexNifty500, models.IndexAllStocks:
		return concat(nifty50, niftyNext50, midAndSmallCap), nil
	case models.IndexFNOStocks:
		return clone(fnoStocks), nil
	case models.IndexUSSP500:
		return clone(sp500Sample), nil
	default:
		return nil, repository.ErrUnknownIndex
	}
}

// Indexes lists the selectable universes.
func (p *StaticProvider) Indexes() []IndexInfo {
	return []IndexInfo{
		{Code: models.IndexByStockName, Name: "By stock name", Count: 0},
		{Code: models.IndexNifty50, Name: "Nifty 50", Count: len(nifty50)},
		{Code: models.IndexNiftyNext50, Name: "Nifty Next 50", Count: len(niftyNext50)},
		{Code: models.IndexNifty100, Name: "Nifty 100", Count: len(nifty50) + len(niftyNext50)},
		{Code: models.IndexNifty200, Name: "Nifty 200", Count: len(nifty50) + len(niftyNext50) + len(midAndSmallCap)},
		{Code: models.IndexNifty500, Name: "Nifty 500", Count: len(nifty50) + len(niftyNext50) + len(midAndSmallCap)},
		{Code: models.IndexAllStocks, Name: "All stocks", Count: len(nifty50) + len(niftyNext50) + len(midAndSmallCap)},
		{Code: models.IndexFNOStocks, Name: "F&O stocks", Count: len(fnoStocks)},
		{Code: models.IndexUSSP500, Name: "US S&P 500", Count: len(sp500Sample)},
	}
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
