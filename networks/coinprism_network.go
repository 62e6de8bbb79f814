package networks

import (
	"fmt"
	"os"
	"strings"
)

// coinprismNetwork is a Network served by a Coinprism style explorer: a
// JSON API and a web frontend on separate hosts.
type coinprismNetwork struct {
	name             string
	alternativeNames []string
	apiURL           string
	webURL           string
}

func (n *coinprismNetwork) GetName() string {
	return n.name
}

func (n *coinprismNetwork) GetAlternativeNames() []string {
	return n.alternativeNames
}

func (n *coinprismNetwork) GetExplorerAPIVariableName() string {
	return fmt.Sprintf("%s_EXPLORER_API", strings.ToUpper(n.name))
}

// GetExplorerAPIURL honours the <NAME>_EXPLORER_API env var so a self
// hosted explorer can be used without code changes.
func (n *coinprismNetwork) GetExplorerAPIURL() string {
	if custom := strings.TrimSpace(os.Getenv(n.GetExplorerAPIVariableName())); custom != "" {
		return strings.TrimRight(custom, "/")
	}
	return n.apiURL
}

func (n *coinprismNetwork) TxURL(hash string) string {
	return fmt.Sprintf("%s/tx/%s", n.webURL, hash)
}

func (n *coinprismNetwork) AssetOwnersURL(assetID string) string {
	return fmt.Sprintf("%s/asset/%s/owners", n.webURL, assetID)
}

var Mainnet Network = &coinprismNetwork{
	name:             "mainnet",
	alternativeNames: []string{"bitcoin", "btc"},
	apiURL:           "https://api.coinprism.com/v1",
	webURL:           "https://www.coinprism.info",
}

var Testnet Network = &coinprismNetwork{
	name:             "testnet",
	alternativeNames: []string{"testnet3", "tbtc"},
	apiURL:           "https://testnet.api.coinprism.com/v1",
	webURL:           "https://testnet.coinprism.info",
}
