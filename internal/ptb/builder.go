package ptb

import (
	"fmt"

	"github.com/fardream/go-bcs/bcs"
)

// Clock is the singleton on-chain clock object, shared at version 1 and
// always passed read-only.
var Clock = SharedObjectArg{
	ObjectID:             mustAddress("0x6"),
	InitialSharedVersion: 1,
	Mutable:              false,
}

func mustAddress(s string) Address {
	a, err := AddressFromHex(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Builder accumulates inputs and commands for one programmable transaction.
type Builder struct {
	inputs   []CallArg
	commands []Command
	err      error
}

// NewBuilder returns an empty transaction builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Err reports the first input-encoding failure, if any. Commands added after
// a failure are no-ops so call sites can stay linear.
func (b *Builder) Err() error {
	return b.err
}

// Inputs returns the accumulated transaction inputs in order.
func (b *Builder) Inputs() []CallArg {
	return b.inputs
}

// Commands returns the accumulated command list in execution order.
func (b *Builder) Commands() []Command {
	return b.commands
}

func (b *Builder) addInput(arg CallArg) Argument {
	b.inputs = append(b.inputs, arg)
	return InputArg(uint16(len(b.inputs) - 1))
}

func (b *Builder) addCommand(cmd Command) uint16 {
	b.commands = append(b.commands, cmd)
	return uint16(len(b.commands) - 1)
}

// Pure adds a BCS-encoded pure value input.
func (b *Builder) Pure(v any) Argument {
	if b.err != nil {
		return Argument{}
	}
	raw, err := bcs.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("failed to encode pure input: %w", err)
		return Argument{}
	}
	return b.addInput(CallArg{Pure: &raw})
}

// PureU64 adds a u64 pure input.
func (b *Builder) PureU64(v uint64) Argument {
	return b.Pure(v)
}

// PureAddress adds an address pure input.
func (b *Builder) PureAddress(a Address) Argument {
	return b.Pure(a)
}

// SharedObject adds a shared object input.
func (b *Builder) SharedObject(obj SharedObjectArg) Argument {
	o := obj
	return b.addInput(CallArg{Object: &ObjectArg{Shared: &o}})
}

// OwnedObject adds an owned object input pinned to an exact version.
func (b *Builder) OwnedObject(ref ObjectRef) Argument {
	r := ref
	return b.addInput(CallArg{Object: &ObjectArg{ImmOrOwned: &r}})
}

// SplitCoins splits the given amounts off a source coin. The returned
// arguments address the split results in order.
func (b *Builder) SplitCoins(coin Argument, amounts ...Argument) []Argument {
	if b.err != nil {
		// Zero placeholders keep call sites indexable; Finish reports the error.
		return make([]Argument, len(amounts))
	}
	idx := b.addCommand(Command{SplitCoins: &SplitCoinsCommand{Coin: coin, Amounts: amounts}})
	out := make([]Argument, len(amounts))
	for i := range amounts {
		out[i] = NestedResultArg(idx, uint16(i))
	}
	return out
}

// MoveCall invokes an entry function and returns the command index, from
// which callers address results via ResultArg/NestedResultArg.
func (b *Builder) MoveCall(pkg Address, module, function string, typeArgs []TypeTag, args []Argument) uint16 {
	if b.err != nil {
		return 0
	}
	if typeArgs == nil {
		typeArgs = []TypeTag{}
	}
	if args == nil {
		args = []Argument{}
	}
	return b.addCommand(Command{MoveCall: &ProgrammableMoveCall{
		Package:       pkg,
		Module:        module,
		Function:      function,
		TypeArguments: typeArgs,
		Arguments:     args,
	}})
}

// ZeroCoin emits a 0x2::coin::zero call producing an empty coin of the given
// type, used as a placeholder where the contract demands a coin argument.
func (b *Builder) ZeroCoin(coinType TypeTag) Argument {
	idx := b.MoveCall(mustAddress("0x2"), "coin", "zero", []TypeTag{coinType}, []Argument{})
	return ResultArg(idx)
}

// TransferObjects sends the given objects to a recipient address input.
func (b *Builder) TransferObjects(objects []Argument, recipient Argument) {
	if b.err != nil {
		return
	}
	b.addCommand(Command{TransferObjects: &TransferObjectsCommand{Objects: objects, Recipient: recipient}})
}

// MergeCoins merges source coins into the destination coin.
func (b *Builder) MergeCoins(destination Argument, sources ...Argument) {
	if b.err != nil {
		return
	}
	b.addCommand(Command{MergeCoins: &MergeCoinsCommand{Destination: destination, Sources: sources}})
}

// Finish assembles the full V1 transaction envelope and serializes it to
// BCS bytes ready for signing.
func (b *Builder) Finish(sender Address, gas GasData) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	inputs := b.inputs
	if inputs == nil {
		inputs = []CallArg{}
	}
	commands := b.commands
	if commands == nil {
		commands = []Command{}
	}

	data := TransactionData{V1: &TransactionDataV1{
		Kind: TransactionKind{ProgrammableTransaction: &ProgrammableTransaction{
			Inputs:   inputs,
			Commands: commands,
		}},
		Sender:     sender,
		GasData:    gas,
		Expiration: TransactionExpiration{None: &struct{}{}},
	}}

	raw, err := bcs.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return raw, nil
}
