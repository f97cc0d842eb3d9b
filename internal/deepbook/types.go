package deepbook

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PoolRecord is one entry of the indexer's /get_pools response.
// Lot and tick sizes come back as bare numbers and may be absent entirely.
type PoolRecord struct {
	PoolID             string      `json:"pool_id"`
	PoolName           string      `json:"pool_name"`
	BaseAssetID        string      `json:"base_asset_id"`
	BaseAssetSymbol    string      `json:"base_asset_symbol"`
	BaseAssetDecimals  int         `json:"base_asset_decimals"`
	QuoteAssetID       string      `json:"quote_asset_id"`
	QuoteAssetSymbol   string      `json:"quote_asset_symbol"`
	QuoteAssetDecimals int         `json:"quote_asset_decimals"`
	LotSize            json.Number `json:"lot_size"`
	TickSize           json.Number `json:"tick_size"`
}

// Level is a single price level of an order book side.
type Level struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderBook is a level-2 depth snapshot for one pool.
type OrderBook struct {
	Timestamp string
	Bids      []Level
	Asks      []Level
}

// BestBid returns the top bid level; ok is false when the side is empty.
func (ob *OrderBook) BestBid() (Level, bool) {
	if len(ob.Bids) == 0 {
		return Level{}, false
	}
	return ob.Bids[0], true
}

// BestAsk returns the top ask level; ok is false when the side is empty.
func (ob *OrderBook) BestAsk() (Level, bool) {
	if len(ob.Asks) == 0 {
		return Level{}, false
	}
	return ob.Asks[0], true
}

// orderBookPayload mirrors the wire shape: levels are ["price","quantity"] pairs.
type orderBookPayload struct {
	Timestamp string      `json:"timestamp"`
	Bids      [][2]string `json:"bids"`
	Asks      [][2]string `json:"asks"`
}

func (p *orderBookPayload) toOrderBook() (*OrderBook, error) {
	ob := &OrderBook{Timestamp: p.Timestamp}
	for _, raw := range p.Bids {
		lvl, err := parseLevel(raw)
		if err != nil {
			return nil, err
		}
		ob.Bids = append(ob.Bids, lvl)
	}
	for _, raw := range p.Asks {
		lvl, err := parseLevel(raw)
		if err != nil {
			return nil, err
		}
		ob.Asks = append(ob.Asks, lvl)
	}
	return ob, nil
}

func parseLevel(raw [2]string) (Level, error) {
	price, err := decimal.NewFromString(raw[0])
	if err != nil {
		return Level{}, err
	}
	qty, err := decimal.NewFromString(raw[1])
	if err != nil {
		return Level{}, err
	}
	return Level{Price: price, Quantity: qty}, nil
}
