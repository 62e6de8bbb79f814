package explorers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/kredits/common"
	"github.com/tranvictor/kredits/util/addrbook"
)

func newTestExplorer(t *testing.T, handler http.HandlerFunc) *CoinprismExplorer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	ce := NewCoinprismExplorer(srv.URL+"/v1/", srv.Client(), nil)
	ce.SetRateLimit(0, 0)
	return ce
}

func TestSetRateLimitThrottlesRequests(t *testing.T) {
	calls := 0
	ce := newTestExplorer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"assets":[]}`)
	})
	ce.SetRateLimit(0.1, 1)

	_, _, err := ce.GetBalance(context.Background(), "akBumi", "X")
	require.NoError(t, err)

	// the next token is ten seconds away, past the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, _, err = ce.GetBalance(ctx, "akBumi", "X")
	var te *common.TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, 1, calls)
}

func TestGetBalanceSumsConfirmedAndUnconfirmed(t *testing.T) {
	ce := newTestExplorer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/addresses/akBumi", r.URL.Path)
		fmt.Fprint(w, `{"assets":[
			{"id":"Y","balance":"100","unconfirmed_balance":"0"},
			{"id":"X","balance":"5","unconfirmed_balance":"3"}
		]}`)
	})

	bal, found, err := ce.GetBalance(context.Background(), "akBumi", "X")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(8), bal.Total())
	assert.Equal(t, "X", bal.AssetID)
}

func TestGetBalanceAcceptsNumbers(t *testing.T) {
	ce := newTestExplorer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"assets":[{"id":"X","balance":5,"unconfirmed_balance":null}]}`)
	})

	bal, found, err := ce.GetBalance(context.Background(), "akBumi", "X")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(5), bal.Total())
}

func TestGetBalanceNotFoundIsNotAnError(t *testing.T) {
	ce := newTestExplorer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"assets":[]}`)
	})

	_, found, err := ce.GetBalance(context.Background(), "akBumi", "X")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetBalanceTransportErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		},
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"assets":[{"id":"X"`)
		},
		"bad quantity": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"assets":[{"id":"X","balance":"lots"}]}`)
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			ce := newTestExplorer(t, handler)
			_, _, err := ce.GetBalance(context.Background(), "akBumi", "X")
			var te *common.TransportError
			require.True(t, errors.As(err, &te), "got %v", err)
			assert.Equal(t, "balance", te.Op)
		})
	}
}

func TestGetBalanceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	ce := NewCoinprismExplorer(srv.URL, nil, nil)
	_, _, err := ce.GetBalance(context.Background(), "akBumi", "X")
	var te *common.TransportError
	assert.True(t, errors.As(err, &te))
}

func ownersJSON(n int) string {
	parts := []string{}
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf(`{"address":"addr%d","asset_quantity":"%d"}`, i, i+1))
	}
	return `{"owners":[` + strings.Join(parts, ",") + `]}`
}

func fakeDeriver(s string) (string, error) {
	if s == "broken" {
		return "", errors.New("nope")
	}
	return "ak" + s, nil
}

func TestListOwnersAnnotatesDisplayedPage(t *testing.T) {
	ce := newTestExplorer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/assets/X/owners", r.URL.Path)
		fmt.Fprint(w, ownersJSON(12))
	})
	ce.Deriver = DeriveFunc(fakeDeriver)
	ce.Resolver = addrbook.Map{"akaddr1": "bumi"}

	listing, err := ce.ListOwners(context.Background(), "X")
	require.NoError(t, err)

	assert.Equal(t, 12, listing.OwnerCount)
	require.Len(t, listing.Owners, 10)
	// 1+2+...+12
	assert.Equal(t, int64(78), listing.Total)
	assert.Equal(t, common.TotalAllOwners, listing.TotalScope)

	// explorer order is kept
	assert.Equal(t, "addr0", listing.Owners[0].SettlementAddress)
	assert.Equal(t, "akaddr0", listing.Owners[0].AssetAddress)
	assert.Equal(t, "akaddr...", listing.Owners[0].Name)
	assert.Equal(t, "bumi", listing.Owners[1].Name)
	assert.Equal(t, int64(2), listing.Owners[1].AssetQuantity)
}

func TestListOwnersTotalOverDisplayedPage(t *testing.T) {
	ce := newTestExplorer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ownersJSON(12))
	})
	ce.Deriver = DeriveFunc(fakeDeriver)
	ce.TotalScope = common.TotalDisplayed

	listing, err := ce.ListOwners(context.Background(), "X")
	require.NoError(t, err)
	// 1+2+...+10
	assert.Equal(t, int64(55), listing.Total)
	assert.Equal(t, 12, listing.OwnerCount)
}

func TestListOwnersKeepsUnderivableAddress(t *testing.T) {
	ce := newTestExplorer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"owners":[{"address":"broken","asset_quantity":"4"}]}`)
	})
	ce.Deriver = DeriveFunc(fakeDeriver)

	listing, err := ce.ListOwners(context.Background(), "X")
	require.NoError(t, err)
	require.Len(t, listing.Owners, 1)
	assert.Equal(t, "broken", listing.Owners[0].AssetAddress)
	assert.Equal(t, "broken...", listing.Owners[0].Name)
}

func TestListOwnersRealDerivation(t *testing.T) {
	ce := newTestExplorer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"owners":[{"address":"16UwLL9Risc3QfPqBUvKofHmBQ7wMtjvM","asset_quantity":"7"}]}`)
	})
	ce.Resolver = addrbook.Map{"akB4NBW9UuCmHuepksob6yfZs6naHtRCPNy": "bumi"}

	listing, err := ce.ListOwners(context.Background(), "X")
	require.NoError(t, err)
	require.Len(t, listing.Owners, 1)
	assert.Equal(t, "bumi", listing.Owners[0].Name)
}

func TestListOwnersMalformedJSON(t *testing.T) {
	ce := newTestExplorer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>oops</html>`)
	})
	_, err := ce.ListOwners(context.Background(), "X")
	var te *common.TransportError
	assert.True(t, errors.As(err, &te))
}
