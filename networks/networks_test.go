package networks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNetwork(t *testing.T) {
	n, err := GetNetwork("mainnet")
	require.NoError(t, err)
	assert.Equal(t, "mainnet", n.GetName())

	n, err = GetNetwork(" TBTC ")
	require.NoError(t, err)
	assert.Equal(t, "testnet", n.GetName())

	_, err = GetNetwork("dogecoin")
	assert.True(t, errors.Is(err, ErrNetworkNotFound))
}

func TestLinks(t *testing.T) {
	assert.Equal(t, "https://www.coinprism.info/tx/abc", Mainnet.TxURL("abc"))
	assert.Equal(t, "https://testnet.coinprism.info/asset/AKJ/owners", Testnet.AssetOwnersURL("AKJ"))
}

func TestExplorerAPIOverride(t *testing.T) {
	assert.Equal(t, "https://api.coinprism.com/v1", Mainnet.GetExplorerAPIURL())

	t.Setenv("MAINNET_EXPLORER_API", "http://localhost:9000/v1/")
	assert.Equal(t, "http://localhost:9000/v1", Mainnet.GetExplorerAPIURL())
}

func TestSupportedNames(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"mainnet", "bitcoin", "btc", "testnet", "testnet3", "tbtc"},
		GetSupportedNetworkNames(),
	)
}
