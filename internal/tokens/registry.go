package tokens

import "github.com/suitent/sui-deepbook-swap/internal/apperror"

// Config describes a supported token: its on-chain coin type, decimal
// precision, and display metadata. The table is static; adding a token is a
// configuration change, not a code change.
type Config struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	CoinType string `json:"coinType"`
	Decimals int    `json:"decimals"`
}

// Registry is the read-only symbol -> token table, fixed at startup.
type Registry struct {
	bySymbol   map[string]Config
	byCoinType map[string]Config
}

// Default returns the registry of mainnet DeepBook tokens.
func Default() *Registry {
	return NewRegistry([]Config{
		{Symbol: "SUI", Name: "Sui", CoinType: "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI", Decimals: 9},
		{Symbol: "DEEP", Name: "DeepBook Token", CoinType: "0x36dbef866a1d62bf7328989a10fb2f07d769f4ee587c0de4a0a256e57e0a58a8::deep::DEEP", Decimals: 6},
		{Symbol: "DBUSDC", Name: "DeepBook USDC", CoinType: "0xf7152c05930480cd740d7311b5b8b45c6f488e3a53a11c3f74a6fac36a52e0d7::DBUSDC::DBUSDC", Decimals: 6},
		{Symbol: "DBUSDT", Name: "DeepBook USDT", CoinType: "0xf7152c05930480cd740d7311b5b8b45c6f488e3a53a11c3f74a6fac36a52e0d7::DBUSDT::DBUSDT", Decimals: 6},
		{Symbol: "WAL", Name: "Walrus", CoinType: "0x9ef7676a9f81937a52ae4b2af8d511a28a0b080477c0c2db40b0ab8882240d76::wal::WAL", Decimals: 9},
		{Symbol: "DBTC", Name: "DeepBook BTC", CoinType: "0x6502dae813dbe5e42643c119a6450a518481f03063febc7e20238e43b6ea9e86::dbtc::DBTC", Decimals: 8},
	})
}

// NewRegistry builds a registry from an explicit token list.
func NewRegistry(list []Config) *Registry {
	r := &Registry{
		bySymbol:   make(map[string]Config, len(list)),
		byCoinType: make(map[string]Config, len(list)),
	}
	for _, t := range list {
		r.bySymbol[t.Symbol] = t
		r.byCoinType[t.CoinType] = t
	}
	return r
}

// IsValid reports whether the symbol is a supported token.
func (r *Registry) IsValid(symbol string) bool {
	_, ok := r.bySymbol[symbol]
	return ok
}

// Get resolves a symbol to its token config.
func (r *Registry) Get(symbol string) (Config, error) {
	t, ok := r.bySymbol[symbol]
	if !ok {
		return Config{}, apperror.Newf(apperror.CodeInvalidToken, "unknown token: %s", symbol)
	}
	return t, nil
}

// ByCoinType resolves an on-chain coin type back to a token config.
// Used to map raw ledger balances to symbols; unknown types report ok=false
// and are dropped by callers rather than errored.
func (r *Registry) ByCoinType(coinType string) (Config, bool) {
	t, ok := r.byCoinType[coinType]
	return t, ok
}

// All returns every registered token.
func (r *Registry) All() []Config {
	out := make([]Config, 0, len(r.bySymbol))
	for _, t := range r.bySymbol {
		out = append(out, t)
	}
	return out
}
