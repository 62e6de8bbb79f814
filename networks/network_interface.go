package networks

type Network interface {
	GetName() string
	GetAlternativeNames() []string

	// base URL of the Coinprism-compatible explorer API, without trailing slash
	GetExplorerAPIURL() string
	GetExplorerAPIVariableName() string

	// web pages linked from chat replies
	TxURL(hash string) string
	AssetOwnersURL(assetID string) string
}
