package networks

import (
	"fmt"
	"strings"
)

// Insert more Network implementation here to support
// more explorers
var supportedNetworks = []Network{
	Mainnet,
	Testnet,
}

var ErrNetworkNotFound = fmt.Errorf("network not found")

var globalSupportedNetworks = newSupportedNetworks()

type networks struct {
	networks map[string]Network
}

func newSupportedNetworks() *networks {
	result := networks{networks: map[string]Network{}}
	for _, n := range supportedNetworks {
		for _, name := range append([]string{n.GetName()}, n.GetAlternativeNames()...) {
			if _, found := result.networks[name]; found {
				panic(fmt.Errorf("network with name or alternative name of '%s' already exists", name))
			}
			result.networks[name] = n
		}
	}
	return &result
}

func GetSupportedNetworkNames() []string {
	res := []string{}
	for _, n := range supportedNetworks {
		res = append(res, n.GetName())
		res = append(res, n.GetAlternativeNames()...)
	}
	return res
}

func GetNetwork(name string) (Network, error) {
	res, found := globalSupportedNetworks.networks[strings.ToLower(strings.TrimSpace(name))]
	if !found {
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}
