package sectormap

import "testing"

func TestSector(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"AAPL", "technology"},
		{"aapl", "technology"},
		{" gme ", "meme"},
		{"COIN", "crypto_related"},
		{"SPY", "etf"},
		{"ZZZZ", SectorOther},
		{"", SectorOther},
	}
	for _, tt := range tests {
		if got := Sector(tt.symbol); got != tt.want {
			t.Fatalf("Sector(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func TestIsSpeculative(t *testing.T) {
	if !IsSpeculative("meme") || !IsSpeculative("crypto_related") {
		t.Fatal("meme and crypto_related must be speculative")
	}
	if IsSpeculative("technology") || IsSpeculative(SectorOther) {
		t.Fatal("regular sectors must not be speculative")
	}
}

func TestHedgeETF(t *testing.T) {
	if got := HedgeETF("technology"); got != "XLK" {
		t.Fatalf("HedgeETF(technology) = %q, want XLK", got)
	}
	if got := HedgeETF("nonsense"); got != "SPY" {
		t.Fatalf("HedgeETF fallback = %q, want SPY", got)
	}
}

func TestSymbolsIn(t *testing.T) {
	memes := SymbolsIn("meme")
	found := false
	for _, s := range memes {
		if s == "GME" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected GME in meme sector, got %v", memes)
	}
}
