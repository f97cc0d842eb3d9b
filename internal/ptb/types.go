// Package ptb assembles Sui programmable transaction blocks and serializes
// them to the BCS wire format the network expects.
package ptb

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Address is a 32-byte Sui address or object ID. Fixed-size, so BCS encodes
// it without a length prefix.
type Address [32]byte

// AddressFromHex parses a 0x-prefixed hex address, left-padding short forms
// like 0x2 and 0x6 to the full 32 bytes.
func AddressFromHex(s string) (Address, error) {
	var a Address
	h := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if h == "" || len(h) > 64 {
		return a, fmt.Errorf("invalid address %q", s)
	}
	if len(h)%2 == 1 {
		h = "0" + h
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(a[32-len(raw):], raw)
	return a, nil
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Digest is an object digest: 32 bytes carried as a length-prefixed byte
// vector on the wire, base58 in JSON-RPC responses.
type Digest []byte

// DigestFromBase58 decodes an RPC-provided object digest.
func DigestFromBase58(s string) (Digest, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid digest %q: got %d bytes", s, len(raw))
	}
	return Digest(raw), nil
}

// ObjectRef pins an owned object to an exact version.
type ObjectRef struct {
	ObjectID Address
	Version  uint64
	Digest   Digest
}

// SharedObjectArg references a shared object by its initial shared version.
type SharedObjectArg struct {
	ObjectID             Address
	InitialSharedVersion uint64
	Mutable              bool
}

// ObjectArg selects how an object input is referenced. Variant order is
// contract-defined: ImmOrOwned=0, Shared=1.
type ObjectArg struct {
	ImmOrOwned *ObjectRef
	Shared     *SharedObjectArg
}

func (ObjectArg) IsBcsEnum() {}

// CallArg is a transaction input: Pure=0, Object=1.
type CallArg struct {
	Pure   *[]byte
	Object *ObjectArg
}

func (CallArg) IsBcsEnum() {}

// NestedResult addresses one element of a multi-result command.
type NestedResult struct {
	Command uint16
	Index   uint16
}

// Argument references a value inside the transaction: GasCoin=0, Input=1,
// Result=2, NestedResult=3.
type Argument struct {
	GasCoin      *struct{}
	Input        *uint16
	Result       *uint16
	NestedResult *NestedResult
}

func (Argument) IsBcsEnum() {}

// GasCoinArg returns the gas coin argument.
func GasCoinArg() Argument {
	return Argument{GasCoin: &struct{}{}}
}

// InputArg references transaction input i.
func InputArg(i uint16) Argument {
	return Argument{Input: &i}
}

// ResultArg references the whole result of command i.
func ResultArg(i uint16) Argument {
	return Argument{Result: &i}
}

// NestedResultArg references element j of command i's result.
func NestedResultArg(i, j uint16) Argument {
	return Argument{NestedResult: &NestedResult{Command: i, Index: j}}
}

// StructTag names a Move struct type.
type StructTag struct {
	Address    Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

// TypeTag is a Move type. Variant order is fixed by the protocol:
// bool=0, u8, u64, u128, address, signer, vector, struct, u16, u32, u256.
type TypeTag struct {
	Bool    *struct{}
	U8      *struct{}
	U64     *struct{}
	U128    *struct{}
	Address *struct{}
	Signer  *struct{}
	Vector  *TypeTag
	Struct  *StructTag
	U16     *struct{}
	U32     *struct{}
	U256    *struct{}
}

func (TypeTag) IsBcsEnum() {}

// TypeTagFromString parses a fully-qualified coin type like
// "0x2::sui::SUI" into a struct type tag. Generic parameters are not
// supported; coin types never carry them here.
func TypeTagFromString(s string) (TypeTag, error) {
	parts := strings.Split(strings.TrimSpace(s), "::")
	if len(parts) != 3 {
		return TypeTag{}, fmt.Errorf("invalid type tag %q", s)
	}
	addr, err := AddressFromHex(parts[0])
	if err != nil {
		return TypeTag{}, err
	}
	return TypeTag{Struct: &StructTag{
		Address:    addr,
		Module:     parts[1],
		Name:       parts[2],
		TypeParams: []TypeTag{},
	}}, nil
}

// ProgrammableMoveCall invokes an entry function.
type ProgrammableMoveCall struct {
	Package       Address
	Module        string
	Function      string
	TypeArguments []TypeTag
	Arguments     []Argument
}

// SplitCoinsCommand splits amounts off a source coin.
type SplitCoinsCommand struct {
	Coin    Argument
	Amounts []Argument
}

// TransferObjectsCommand sends objects to a recipient address argument.
type TransferObjectsCommand struct {
	Objects   []Argument
	Recipient Argument
}

// MergeCoinsCommand merges source coins into a destination coin.
type MergeCoinsCommand struct {
	Destination Argument
	Sources     []Argument
}

// Command is one step of a programmable transaction. Variant order is
// protocol-defined: MoveCall=0, TransferObjects=1, SplitCoins=2,
// MergeCoins=3, Publish=4, MakeMoveVec=5, Upgrade=6. Only the first four are
// ever produced here; the tail variants exist to keep indices aligned.
type Command struct {
	MoveCall        *ProgrammableMoveCall
	TransferObjects *TransferObjectsCommand
	SplitCoins      *SplitCoinsCommand
	MergeCoins      *MergeCoinsCommand
	Publish         *struct{}
	MakeMoveVec     *struct{}
	Upgrade         *struct{}
}

func (Command) IsBcsEnum() {}

// ProgrammableTransaction is the input/command list of a transaction block.
type ProgrammableTransaction struct {
	Inputs   []CallArg
	Commands []Command
}

// TransactionKind: ProgrammableTransaction is variant 0.
type TransactionKind struct {
	ProgrammableTransaction *ProgrammableTransaction
}

func (TransactionKind) IsBcsEnum() {}

// GasData carries gas payment, owner, price, and budget.
type GasData struct {
	Payment []ObjectRef
	Owner   Address
	Price   uint64
	Budget  uint64
}

// TransactionExpiration: None=0, Epoch=1.
type TransactionExpiration struct {
	None  *struct{}
	Epoch *uint64
}

func (TransactionExpiration) IsBcsEnum() {}

// TransactionDataV1 is the V1 transaction envelope.
type TransactionDataV1 struct {
	Kind       TransactionKind
	Sender     Address
	GasData    GasData
	Expiration TransactionExpiration
}

// TransactionData: V1 is the only variant.
type TransactionData struct {
	V1 *TransactionDataV1
}

func (TransactionData) IsBcsEnum() {}
