package sui

import "fmt"

// RPCError is a JSON-RPC error object from the fullnode.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Coin is one owned coin object of a given type.
type Coin struct {
	CoinType     string `json:"coinType"`
	CoinObjectID string `json:"coinObjectId"`
	Version      string `json:"version"`
	Digest       string `json:"digest"`
	Balance      string `json:"balance"`
}

// CoinPage is a paginated suix_getCoins result.
type CoinPage struct {
	Data        []Coin  `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// Balance is the aggregate holding of one coin type.
type Balance struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    string `json:"totalBalance"`
}

// ObjectOwner describes object ownership; only the shared variant is used.
type ObjectOwner struct {
	AddressOwner *string `json:"AddressOwner,omitempty"`
	Shared       *struct {
		InitialSharedVersion uint64 `json:"initial_shared_version"`
	} `json:"Shared,omitempty"`
}

// ObjectData is the subset of sui_getObject data the builders need.
type ObjectData struct {
	ObjectID string       `json:"objectId"`
	Version  string       `json:"version"`
	Digest   string       `json:"digest"`
	Owner    *ObjectOwner `json:"owner"`
}

// ObjectResponse wraps sui_getObject's data/error union.
type ObjectResponse struct {
	Data  *ObjectData `json:"data"`
	Error any         `json:"error"`
}

// GasUsed is the gas breakdown of an executed transaction.
type GasUsed struct {
	ComputationCost string `json:"computationCost"`
	StorageCost     string `json:"storageCost"`
	StorageRebate   string `json:"storageRebate"`
}

// TransactionEffects is the subset of effects the API surfaces.
type TransactionEffects struct {
	Status struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	} `json:"status"`
	GasUsed GasUsed `json:"gasUsed"`
}

// TransactionBlock is a sui_getTransactionBlock result.
type TransactionBlock struct {
	Digest      string              `json:"digest"`
	TimestampMs string              `json:"timestampMs"`
	Effects     *TransactionEffects `json:"effects"`
}

// DryRunResult is a sui_dryRunTransactionBlock result.
type DryRunResult struct {
	Effects *TransactionEffects `json:"effects"`
}

// ExecuteResult is a sui_executeTransactionBlock result.
type ExecuteResult struct {
	Digest  string              `json:"digest"`
	Effects *TransactionEffects `json:"effects"`
}
