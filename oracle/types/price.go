package types

import (
	"encoding/hex"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/bandprotocol/bandchain-packet/obi"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Price is the OBI output of the price oracle scripts.
type Price struct {
	Px uint64 `obi:"px" json:"px"`
}

// Calldata is the OBI input of the price oracle scripts.
type Calldata struct {
	Symbol     string `obi:"symbol" json:"symbol"`
	Multiplier uint64 `obi:"multiplier" json:"multiplier"`
}

// DecodePrice decodes bz as exactly one Price. Short or trailing bytes fail.
func DecodePrice(bz []byte) (Price, error) {
	var price Price
	if err := obi.Decode(bz, &price); err != nil {
		return Price{}, errorsmod.Wrapf(ErrBinaryDecode, "price (%d bytes): %v", len(bz), err)
	}

	return price, nil
}

// Value scales px down by multiplier.
func (p Price) Value(multiplier uint64) (sdk.Dec, error) {
	if multiplier == 0 {
		return sdk.Dec{}, errorsmod.Wrap(ErrInvalidParams, "multiplier must be positive")
	}

	px := sdk.NewDecFromInt(sdkmath.NewIntFromUint64(p.Px))
	return px.Quo(sdk.NewDecFromInt(sdkmath.NewIntFromUint64(multiplier))), nil
}

// EncodeCalldata returns the hex form of the OBI encoded calldata, as
// expected by the request_search endpoint.
func EncodeCalldata(symbol string, multiplier uint64) (string, error) {
	bz, err := obi.Encode(Calldata{Symbol: symbol, Multiplier: multiplier})
	if err != nil {
		return "", errorsmod.Wrap(ErrInvalidParams, err.Error())
	}

	return hex.EncodeToString(bz), nil
}

// DecodeCalldata is the inverse of the OBI encoding done by EncodeCalldata.
func DecodeCalldata(bz []byte) (Calldata, error) {
	var calldata Calldata
	if err := obi.Decode(bz, &calldata); err != nil {
		return Calldata{}, errorsmod.Wrapf(ErrBinaryDecode, "calldata: %v", err)
	}

	return calldata, nil
}
