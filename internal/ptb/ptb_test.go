package ptb

import (
	"bytes"
	"testing"

	"github.com/fardream/go-bcs/bcs"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromHexPadsShortForms(t *testing.T) {
	a, err := AddressFromHex("0x6")
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000006", a.String())

	a, err = AddressFromHex("0x2")
	require.NoError(t, err)
	assert.Equal(t, byte(2), a[31])

	full := "0x22be4cade64bf2d02412c7e8d0e8beea2f78828b948118d46735315409371a3c"
	a, err = AddressFromHex(full)
	require.NoError(t, err)
	assert.Equal(t, full, a.String())
}

func TestAddressFromHexRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "0x", "0xzz", "0x" + "11" + "0x"} {
		_, err := AddressFromHex(s)
		assert.Error(t, err, s)
	}
}

func TestDigestFromBase58(t *testing.T) {
	want := bytes.Repeat([]byte{7}, 32)
	d, err := DigestFromBase58(base58.Encode(want))
	require.NoError(t, err)
	assert.Equal(t, want, []byte(d))

	_, err = DigestFromBase58("abc")
	assert.Error(t, err, "short digests must be rejected")
}

func TestTypeTagFromString(t *testing.T) {
	tag, err := TypeTagFromString("0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI")
	require.NoError(t, err)
	require.NotNil(t, tag.Struct)
	assert.Equal(t, "sui", tag.Struct.Module)
	assert.Equal(t, "SUI", tag.Struct.Name)

	_, err = TypeTagFromString("0x2::sui")
	assert.Error(t, err)
}

func TestArgumentEncoding(t *testing.T) {
	raw, err := bcs.Marshal(GasCoinArg())
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, raw)

	raw, err = bcs.Marshal(InputArg(5))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 5, 0}, raw)

	raw, err = bcs.Marshal(NestedResultArg(2, 1))
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 2, 0, 1, 0}, raw)
}

func TestBuilderIndices(t *testing.T) {
	b := NewBuilder()

	amt := b.PureU64(200_000_000)
	require.NotNil(t, amt.Input)
	assert.Equal(t, uint16(0), *amt.Input)

	minOut := b.PureU64(1_386_000)
	require.NotNil(t, minOut.Input)
	assert.Equal(t, uint16(1), *minOut.Input)

	split := b.SplitCoins(GasCoinArg(), amt)
	require.Len(t, split, 1)
	require.NotNil(t, split[0].NestedResult)
	assert.Equal(t, uint16(0), split[0].NestedResult.Command)

	suiTag, err := TypeTagFromString("0x2::sui::SUI")
	require.NoError(t, err)
	zero := b.ZeroCoin(suiTag)
	require.NotNil(t, zero.Result)
	assert.Equal(t, uint16(1), *zero.Result)

	require.NoError(t, b.Err())

	sender, err := AddressFromHex("0x" + "11" + "0000000000000000000000000000000000000000000000000000000000" + "22")
	require.NoError(t, err)
	raw, err := b.Finish(sender, GasData{
		Payment: []ObjectRef{},
		Owner:   sender,
		Price:   1000,
		Budget:  5_000_000,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	// TransactionData::V1 then TransactionKind::ProgrammableTransaction.
	assert.Equal(t, byte(0), raw[0])
	assert.Equal(t, byte(0), raw[1])
}
