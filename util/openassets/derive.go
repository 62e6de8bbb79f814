// Package openassets derives Open Assets addresses from the bitcoin
// addresses the explorer reports for asset holders.
package openassets

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/mr-tron/base58"
)

// AssetVersion is the version byte prepended to mark the asset-layer
// namespace.
const AssetVersion byte = 19

const checksumLen = 4

var ErrInvalidAddress = errors.New("invalid settlement address")

// DeriveAssetAddress turns a base-58 settlement address into its asset
// address: strip the 4 byte checksum, prefix AssetVersion, append the first
// 4 bytes of the double SHA-256 of that and re-encode. The input checksum is
// not verified.
func DeriveAssetAddress(settlementAddress string) (string, error) {
	raw, err := base58.Decode(settlementAddress)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidAddress, settlementAddress, err)
	}
	if len(raw) <= checksumLen {
		return "", fmt.Errorf("%w %q: decoded to %d bytes", ErrInvalidAddress, settlementAddress, len(raw))
	}

	payload := make([]byte, 0, len(raw)+1)
	payload = append(payload, AssetVersion)
	payload = append(payload, raw[:len(raw)-checksumLen]...)

	return base58.Encode(appendChecksum(payload)), nil
}

func appendChecksum(payload []byte) []byte {
	sum := chainhash.DoubleHashB(payload)
	return append(payload, sum[:checksumLen]...)
}
