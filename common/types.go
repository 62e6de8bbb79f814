package common

// AddressBookEntry maps a chat nickname to an asset-layer address.
type AddressBookEntry struct {
	Nickname string
	Address  string
}

// AssetBalance is what the explorer reports for one asset held by one
// address. Quantities are integer asset units.
type AssetBalance struct {
	AssetID     string
	Balance     int64
	Unconfirmed int64
}

// Total is the confirmed plus unconfirmed quantity.
func (b AssetBalance) Total() int64 {
	return b.Balance + b.Unconfirmed
}

// AssetOwnerRecord is one holder of an asset as reported by the explorer,
// annotated with the derived asset address and a display name.
type AssetOwnerRecord struct {
	SettlementAddress string
	AssetQuantity     int64
	AssetAddress      string
	Name              string
}

// TotalScope decides which owners are summed into OwnerListing.Total.
type TotalScope string

const (
	TotalAllOwners TotalScope = "all"
	TotalDisplayed TotalScope = "page"
)

// OwnerListing is the result of listing the holders of an asset. Owners
// keeps the order the explorer returned them in.
type OwnerListing struct {
	AssetID    string
	Owners     []AssetOwnerRecord
	OwnerCount int
	Total      int64
	TotalScope TotalScope
}

// TransferRequest is built per send command and never stored. ID only
// correlates log lines, it is not sent to the asset server.
type TransferRequest struct {
	ID       string
	From     string
	To       string
	AssetID  string
	Quantity int64
}

type TransactionReceipt struct {
	RequestID string
	Hash      string
}
