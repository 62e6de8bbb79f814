package addrbook

import (
	"context"
)

// AddressResolver maps an asset address to the name shown in listings.
//
// Contract: an address nobody claimed resolves to ShortAddress(address).
type AddressResolver interface {
	Resolve(ctx context.Context, address string) string
}

// ShortAddress is the fallback display name: the first six characters of
// the address followed by "...".
func ShortAddress(address string) string {
	if len(address) <= 6 {
		return address + "..."
	}
	return address[:6] + "..."
}

// Resolve makes Book an AddressResolver. A store failure degrades to the
// short address; the listing is still worth showing.
func (b *Book) Resolve(ctx context.Context, address string) string {
	name, found, err := b.LookupName(ctx, address)
	if err != nil || !found {
		return ShortAddress(address)
	}
	return name
}

// Map is a lightweight AddressResolver for tests, keyed by asset address.
type Map map[string]string

func (m Map) Resolve(_ context.Context, address string) string {
	if name, ok := m[address]; ok {
		return name
	}
	return ShortAddress(address)
}
