package sectormap

import "strings"

// SectorOther is returned for any symbol the map does not know.
const SectorOther = "other"

var symbolToSector = map[string]string{
	// Technology
	"AAPL": "technology", "MSFT": "technology", "GOOGL": "technology", "GOOG": "technology",
	"AMZN": "technology", "META": "technology", "NVDA": "technology", "AMD": "technology",
	"INTC": "technology", "CRM": "technology", "ORCL": "technology", "ADBE": "technology",
	"CSCO": "technology", "AVGO": "technology", "QCOM": "technology", "TXN": "technology",
	"AMAT": "technology", "LRCX": "technology", "KLAC": "technology", "MU": "technology",
	"NXPI": "technology", "MRVL": "technology", "SNPS": "technology", "CDNS": "technology",
	"NOW": "technology", "PANW": "technology", "CRWD": "technology", "ZS": "technology",
	"DDOG": "technology", "NET": "technology", "SNOW": "technology", "TEAM": "technology",
	"UBER": "technology", "LYFT": "technology", "ABNB": "technology", "DASH": "technology",
	"SQ": "technology", "PYPL": "technology", "SHOP": "technology", "TWLO": "technology",
	"OKTA": "technology", "ZM": "technology", "DOCU": "technology", "WDAY": "technology",
	"SPLK": "technology", "FTNT": "technology", "CHKP": "technology", "IBM": "technology",
	"HPQ": "technology", "HPE": "technology", "DELL": "technology", "WDC": "technology",

	// Healthcare
	"JNJ": "healthcare", "PFE": "healthcare", "UNH": "healthcare", "ABBV": "healthcare",
	"MRK": "healthcare", "TMO": "healthcare", "ABT": "healthcare", "LLY": "healthcare",
	"BMY": "healthcare", "AMGN": "healthcare", "GILD": "healthcare", "CVS": "healthcare",
	"CI": "healthcare", "ISRG": "healthcare", "VRTX": "healthcare", "REGN": "healthcare",
	"HUM": "healthcare", "BIIB": "healthcare", "ILMN": "healthcare", "MRNA": "healthcare",
	"BNTX": "healthcare", "ZTS": "healthcare", "SYK": "healthcare", "BSX": "healthcare",
	"MDT": "healthcare", "EW": "healthcare", "DXCM": "healthcare", "ALGN": "healthcare",

	// Finance
	"JPM": "finance", "BAC": "finance", "WFC": "finance", "GS": "finance",
	"MS": "finance", "C": "finance", "BLK": "finance", "SCHW": "finance",
	"AXP": "finance", "USB": "finance", "PNC": "finance", "TFC": "finance",
	"BK": "finance", "STT": "finance", "NTRS": "finance", "RF": "finance",
	"V": "finance", "MA": "finance", "COF": "finance", "DFS": "finance",

	// Energy
	"XOM": "energy", "CVX": "energy", "COP": "energy", "SLB": "energy",
	"EOG": "energy", "PSX": "energy", "VLO": "energy", "MPC": "energy",
	"OXY": "energy", "HAL": "energy", "BKR": "energy", "DVN": "energy",
	"FANG": "energy", "KMI": "energy", "WMB": "energy", "LNG": "energy",

	// Consumer
	"WMT": "consumer", "COST": "consumer", "TGT": "consumer", "HD": "consumer",
	"LOW": "consumer", "NKE": "consumer", "SBUX": "consumer", "MCD": "consumer",
	"PG": "consumer", "KO": "consumer", "PEP": "consumer", "PM": "consumer",
	"MO": "consumer", "MDLZ": "consumer", "CL": "consumer", "KMB": "consumer",
	"DG": "consumer", "DLTR": "consumer", "ROST": "consumer", "TJX": "consumer",
	"YUM": "consumer", "CMG": "consumer", "QSR": "consumer", "DPZ": "consumer",

	// Industrials
	"CAT": "industrials", "DE": "industrials", "UPS": "industrials", "FDX": "industrials",
	"HON": "industrials", "GE": "industrials", "BA": "industrials", "LMT": "industrials",
	"RTX": "industrials", "NOC": "industrials", "GD": "industrials", "LHX": "industrials",
	"MMM": "industrials", "EMR": "industrials", "ETN": "industrials", "ITW": "industrials",
	"CSX": "industrials", "UNP": "industrials", "NSC": "industrials", "WM": "industrials",

	// Materials
	"LIN": "materials", "APD": "materials", "ECL": "materials", "NEM": "materials",
	"FCX": "materials", "SHW": "materials", "DD": "materials", "DOW": "materials",
	"PPG": "materials", "NUE": "materials", "VMC": "materials", "MLM": "materials",
	"GOLD": "materials", "AA": "materials", "CF": "materials", "MOS": "materials",

	// Utilities
	"NEE": "utilities", "DUK": "utilities", "SO": "utilities", "D": "utilities",
	"AEP": "utilities", "EXC": "utilities", "SRE": "utilities", "PEG": "utilities",
	"XEL": "utilities", "ED": "utilities", "ES": "utilities", "AWK": "utilities",

	// Real estate
	"AMT": "real_estate", "PLD": "real_estate", "CCI": "real_estate", "EQIX": "real_estate",
	"SPG": "real_estate", "PSA": "real_estate", "DLR": "real_estate", "O": "real_estate",
	"WELL": "real_estate", "AVB": "real_estate", "EQR": "real_estate", "VTR": "real_estate",

	// Communication
	"NFLX": "communication", "DIS": "communication", "CMCSA": "communication", "T": "communication",
	"VZ": "communication", "TMUS": "communication", "CHTR": "communication", "EA": "communication",
	"ATVI": "communication", "TTWO": "communication", "RBLX": "communication", "MTCH": "communication",

	// Meme stocks, high-volatility retail favorites
	"GME": "meme", "AMC": "meme", "BBBY": "meme", "BB": "meme",
	"CLOV": "meme", "WISH": "meme", "PLTR": "meme", "SOFI": "meme",
	"HOOD": "meme", "RIVN": "meme", "LCID": "meme", "TSLA": "meme",

	// Crypto-adjacent equities
	"COIN": "crypto_related", "MSTR": "crypto_related", "RIOT": "crypto_related",
	"MARA": "crypto_related", "BITO": "crypto_related", "GBTC": "crypto_related",
	"HUT": "crypto_related", "BITF": "crypto_related", "CLSK": "crypto_related",

	// Equity ETFs
	"SPY": "etf", "QQQ": "etf", "VOO": "etf", "VTI": "etf",
	"IVV": "etf", "IWM": "etf", "DIA": "etf", "VEA": "etf",
	"VWO": "etf", "EFA": "etf", "EEM": "etf", "VUG": "etf",
	"XLK": "etf", "XLF": "etf", "XLE": "etf", "XLV": "etf",
	"XLY": "etf", "XLP": "etf", "XLI": "etf", "XLB": "etf",
	"XLU": "etf", "XLRE": "etf", "XLC": "etf",

	// Bond ETFs
	"AGG": "bond_etf", "BND": "bond_etf", "LQD": "bond_etf", "TLT": "bond_etf",
	"GOVT": "bond_etf", "MUB": "bond_etf", "SHY": "bond_etf", "IEF": "bond_etf",
	"TIP": "bond_etf", "HYG": "bond_etf", "JNK": "bond_etf", "EMB": "bond_etf",

	// Commodity ETFs
	"GLD": "commodity_etf", "IAU": "commodity_etf", "SGOL": "commodity_etf",
	"SLV": "commodity_etf", "USO": "commodity_etf", "UNG": "commodity_etf",
	"DBA": "commodity_etf", "DBC": "commodity_etf", "PDBC": "commodity_etf",
}

var sectorToETF = map[string]string{
	"technology":     "XLK",
	"healthcare":     "XLV",
	"finance":        "XLF",
	"energy":         "XLE",
	"consumer":       "XLY",
	"industrials":    "XLI",
	"materials":      "XLB",
	"utilities":      "XLU",
	"real_estate":    "XLRE",
	"communication":  "XLC",
	"meme":           "SPY", // no meme ETF, use the market proxy
	"crypto_related": "BITO",
	"etf":            "SPY",
	"bond_etf":       "AGG",
	"commodity_etf":  "GLD",
	SectorOther:      "SPY",
}

// speculative sectors get no diversification credit and stricter limits
// unless a conviction explicitly overrides them.
var speculative = map[string]bool{
	"meme":           true,
	"crypto_related": true,
}

// Sector returns the sector for a ticker, SectorOther if unmapped.
func Sector(symbol string) string {
	if symbol == "" {
		return SectorOther
	}
	if s, ok := symbolToSector[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return s
	}
	return SectorOther
}

// IsSpeculative reports whether a sector is a high-volatility category.
func IsSpeculative(sector string) bool {
	return speculative[strings.ToLower(strings.TrimSpace(sector))]
}

// HedgeETF returns the representative ETF for a sector, SPY by default.
func HedgeETF(sector string) string {
	if etf, ok := sectorToETF[strings.ToLower(strings.TrimSpace(sector))]; ok {
		return etf
	}
	return "SPY"
}

// AllSectors returns the distinct sectors in the map.
func AllSectors() []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(sectorToETF))
	for _, s := range symbolToSector {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// SymbolsIn returns every mapped ticker in the given sector.
func SymbolsIn(sector string) []string {
	sector = strings.ToLower(strings.TrimSpace(sector))
	var out []string
	for sym, s := range symbolToSector {
		if s == sector {
			out = append(out, sym)
		}
	}
	return out
}
