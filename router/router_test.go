package router

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/kredits/common"
	"github.com/tranvictor/kredits/metrics"
	"github.com/tranvictor/kredits/networks"
	"github.com/tranvictor/kredits/ui"
	"github.com/tranvictor/kredits/util/addrbook"
	"github.com/tranvictor/kredits/util/store"
)

type fakeExplorer struct {
	balances map[string]common.AssetBalance
	listing  common.OwnerListing
	err      error
	calls    int
}

func (f *fakeExplorer) GetBalance(_ context.Context, address, assetID string) (common.AssetBalance, bool, error) {
	f.calls++
	if f.err != nil {
		return common.AssetBalance{}, false, f.err
	}
	b, ok := f.balances[address]
	return b, ok, nil
}

func (f *fakeExplorer) ListOwners(_ context.Context, assetID string) (common.OwnerListing, error) {
	f.calls++
	return f.listing, f.err
}

type fakeSender struct {
	max      int64
	hash     string
	err      error
	requests []common.TransferRequest
}

func (f *fakeSender) Send(_ context.Context, req common.TransferRequest) (common.TransactionReceipt, error) {
	if f.max > 0 && req.Quantity > f.max {
		return common.TransactionReceipt{}, &common.QuantityExceededError{Quantity: req.Quantity, Max: f.max}
	}
	f.requests = append(f.requests, req)
	if f.err != nil {
		return common.TransactionReceipt{}, f.err
	}
	return common.TransactionReceipt{RequestID: req.ID, Hash: f.hash}, nil
}

type fixture struct {
	router   *Router
	book     *addrbook.Book
	explorer *fakeExplorer
	sender   *fakeSender
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, settings Settings) *fixture {
	t.Helper()
	if settings.Keyword == "" {
		settings.Keyword = "kredits"
	}
	if settings.AssetID == "" {
		settings.AssetID = "AssetX"
	}
	settings.FromAddress = "akFrom"

	book := addrbook.New(store.NewMemoryStore(), settings.Keyword)
	ctx := context.Background()
	_, err := book.Add(ctx, "bumi", "akBumi")
	require.NoError(t, err)
	_, err = book.Add(ctx, "galfert", "akGalfert")
	require.NoError(t, err)

	f := &fixture{
		book:     book,
		explorer: &fakeExplorer{balances: map[string]common.AssetBalance{}},
		sender:   &fakeSender{hash: "abc"},
		metrics:  metrics.New(),
	}
	f.router = New(settings, book, f.explorer, f.sender, NewAdminList([]string{"admin"}), nil)
	f.router.SetMetrics(f.metrics)
	return f
}

func (f *fixture) hear(t *testing.T, user, room, text string) []string {
	t.Helper()
	u := ui.NewRecordingUI()
	require.NoError(t, f.router.Handle(context.Background(), Message{User: user, Room: room, Text: text}, u))
	return u.Lines()
}

func (f *fixture) count(command, outcome string) float64 {
	return testutil.ToFloat64(f.metrics.Commands().WithLabelValues(command, outcome))
}

func TestAddressCommandsNeedAdmin(t *testing.T) {
	f := newFixture(t, Settings{})

	for _, text := range []string{
		"kredits address add raucao akRaucao",
		"kredits address remove bumi",
		"kredits address list",
		"kredits address find bu",
	} {
		assert.Equal(t, []string{replyAddressUnauthorized}, f.hear(t, "mallory", "#kredits", text), text)
	}
	_, found, err := f.book.LookupAddress(context.Background(), "raucao")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 4.0, f.count("address_add", metrics.OutcomeUnauthorized)+
		f.count("address_remove", metrics.OutcomeUnauthorized)+
		f.count("address_list", metrics.OutcomeUnauthorized)+
		f.count("address_find", metrics.OutcomeUnauthorized))
}

func TestAddressCommands(t *testing.T) {
	f := newFixture(t, Settings{})

	assert.Equal(t,
		[]string{"Added raucao's address to the addressbook."},
		f.hear(t, "admin", "#kredits", "kredits address add raucao akRaucao"))
	assert.Equal(t,
		[]string{"Removed bumi's entry from the addressbook."},
		f.hear(t, "ADMIN", "#kredits", "kredits address remove bumi"))
	assert.Equal(t,
		[]string{
			"galfert | akGalfert",
			"raucao  | akRaucao",
		},
		f.hear(t, "admin", "#kredits", "kredits address list"))
	assert.Equal(t,
		[]string{"Sorry Dave, I can't do that. Need both a nickname and address to add an addressbook entry."},
		f.hear(t, "admin", "#kredits", "kredits address add nobody"))
	assert.Equal(t, 1.0, f.count("address_add", metrics.OutcomeRejected))
}

func TestAddressFind(t *testing.T) {
	f := newFixture(t, Settings{})

	assert.Equal(t, []string{"galfert | akGalfert"}, f.hear(t, "admin", "", "kredits address find galf"))
	assert.Equal(t, []string{`Nobody in the addressbook matches "zzz".`}, f.hear(t, "admin", "", "kredits address find zzz"))
}

func TestShow(t *testing.T) {
	f := newFixture(t, Settings{})
	f.explorer.balances["akBumi"] = common.AssetBalance{AssetID: "AssetX", Balance: 5, Unconfirmed: 3}

	assert.Equal(t, []string{"bumi has 8 kredits"}, f.hear(t, "anyone", "", "kredits show bumi"))
	// known nick without holdings
	assert.Equal(t, []string{"not found"}, f.hear(t, "anyone", "", "kredits show galfert"))
	// unknown nick never reaches the explorer
	calls := f.explorer.calls
	assert.Equal(t, []string{"not found"}, f.hear(t, "anyone", "", "kredits show nobody"))
	assert.Equal(t, calls, f.explorer.calls)
}

func TestShowExplorerTrouble(t *testing.T) {
	f := newFixture(t, Settings{})
	f.explorer.err = &common.TransportError{Service: "explorer", Op: "balance", Status: 500, Err: errors.New("boom")}

	assert.Equal(t, []string{replyExplorerTrouble}, f.hear(t, "anyone", "", "kredits show bumi"))
	assert.Equal(t, 1.0, f.count("show", metrics.OutcomeFailed))
}

func TestList(t *testing.T) {
	f := newFixture(t, Settings{Network: networks.Testnet})
	f.explorer.listing = common.OwnerListing{
		AssetID: "AssetX",
		Owners: []common.AssetOwnerRecord{
			{Name: "bumi", AssetQuantity: 120},
			{Name: "akMt4b...", AssetQuantity: 7},
		},
		OwnerCount: 14,
		Total:      200,
		TotalScope: common.TotalAllOwners,
	}

	assert.Equal(t, []string{
		"bumi      | 120",
		"akMt4b... | 7",
		"200 kredits total, owned by 14 addresses. details: https://testnet.coinprism.info/asset/AssetX/owners",
	}, f.hear(t, "anyone", "", "kredits list"))
}

func TestListLongNames(t *testing.T) {
	f := newFixture(t, Settings{})
	f.explorer.listing = common.OwnerListing{
		Owners: []common.AssetOwnerRecord{
			{Name: "bumi", AssetQuantity: 1},
			{Name: "averyverylongnick", AssetQuantity: 2},
		},
		OwnerCount: 2,
		Total:      3,
	}

	lines := f.hear(t, "anyone", "", "kredits list")
	require.Len(t, lines, 3)
	assert.Equal(t, "bumi              | 1", lines[0])
	assert.Equal(t, "averyverylongnick | 2", lines[1])
}

func TestListNotConfigured(t *testing.T) {
	f := newFixture(t, Settings{})
	f.router.settings.AssetID = ""

	lines := f.hear(t, "anyone", "", "kredits list")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "ASSET_ID")
	assert.Equal(t, 0, f.explorer.calls)
}

func TestSend(t *testing.T) {
	f := newFixture(t, Settings{DefaultQuantity: 2})

	assert.Equal(t,
		[]string{"OK, done! (transaction should appear soon: https://www.coinprism.info/tx/abc )"},
		f.hear(t, "admin", "", "kredits send 5 to bumi"))
	require.Len(t, f.sender.requests, 1)
	req := f.sender.requests[0]
	assert.Equal(t, "akFrom", req.From)
	assert.Equal(t, "akBumi", req.To)
	assert.Equal(t, "AssetX", req.AssetID)
	assert.Equal(t, int64(5), req.Quantity)
	assert.NotEmpty(t, req.ID)

	f.hear(t, "admin", "", "kredits send to galfert")
	require.Len(t, f.sender.requests, 2)
	assert.Equal(t, int64(2), f.sender.requests[1].Quantity)
	assert.Equal(t, 2.0, f.count("send", metrics.OutcomeOK))
}

func TestSendRefusals(t *testing.T) {
	f := newFixture(t, Settings{})
	f.sender.max = 100

	assert.Equal(t, []string{replySendUnauthorized}, f.hear(t, "mallory", "", "kredits send 5 to bumi"))
	assert.Equal(t, []string{replyTooMuch}, f.hear(t, "admin", "", "kredits send 150 to bumi"))
	assert.Equal(t,
		[]string{"sorry, I don't know the address of bum (did you mean bumi?)"},
		f.hear(t, "admin", "", "kredits send 5 to bum"))
	assert.Equal(t,
		[]string{"sorry, I don't know the address of zed"},
		f.hear(t, "admin", "", "kredits send 5 to zed"))
	assert.Empty(t, f.sender.requests)
}

func TestSendServerErrors(t *testing.T) {
	f := newFixture(t, Settings{})

	f.sender.err = &common.TransferError{Status: 400, Message: "insufficient funds"}
	assert.Equal(t,
		[]string{"Something is wrong with the asset server: insufficient funds"},
		f.hear(t, "admin", "", "kredits send 5 to bumi"))

	f.sender.err = &common.TransportError{Service: "asset server", Op: "send_asset", Err: errors.New("dial tcp: refused")}
	assert.Equal(t, []string{replyServerTrouble}, f.hear(t, "admin", "", "kredits send 5 to bumi"))

	f.sender.err = fmt.Errorf("wrapped: %w", &common.TransferError{Status: 500, Message: "down"})
	assert.Equal(t,
		[]string{"Something is wrong with the asset server: down"},
		f.hear(t, "admin", "", "kredits send 5 to bumi"))
}

func TestIncrement(t *testing.T) {
	f := newFixture(t, Settings{DefaultQuantity: 3, PlusPlusRooms: []string{"#kredits"}})

	// silent in every case
	assert.Empty(t, f.hear(t, "admin", "#kredits", "bumi++"))
	assert.Empty(t, f.hear(t, "admin", "#random", "bumi++"))
	assert.Empty(t, f.hear(t, "mallory", "#kredits", "bumi++"))
	assert.Empty(t, f.hear(t, "admin", "#kredits", "nobody++"))

	require.Len(t, f.sender.requests, 1)
	assert.Equal(t, "akBumi", f.sender.requests[0].To)
	assert.Equal(t, int64(3), f.sender.requests[0].Quantity)
	assert.Equal(t, 1.0, f.count("increment", metrics.OutcomeOK))
	assert.Equal(t, 1.0, f.count("increment", metrics.OutcomeUnauthorized))
}

func TestIncrementEveryRoomWhenUnrestricted(t *testing.T) {
	f := newFixture(t, Settings{})

	f.hear(t, "admin", "#random", "galfert ++")
	require.Len(t, f.sender.requests, 1)
	assert.Equal(t, "akGalfert", f.sender.requests[0].To)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, Settings{})
	now := time.Unix(1700000000, 0)
	f.router.now = func() time.Time { return now }
	f.router.SetRateLimit(1)
	f.explorer.balances["akBumi"] = common.AssetBalance{Balance: 1}

	assert.Equal(t, []string{"bumi has 1 kredits"}, f.hear(t, "anyone", "", "kredits show bumi"))
	assert.Equal(t, []string{"slow down, anyone"}, f.hear(t, "anyone", "", "kredits show bumi"))
	// address book commands don't leave the process and aren't limited
	assert.Len(t, f.hear(t, "admin", "", "kredits address list"), 2)
	assert.Equal(t, 1.0, f.count("show", metrics.OutcomeThrottled))
}

func TestHandleIgnoresChatter(t *testing.T) {
	f := newFixture(t, Settings{})
	assert.Empty(t, f.hear(t, "anyone", "", "good morning"))
	assert.Equal(t, 0, f.explorer.calls)
}

func TestHandleCancelledContext(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.router.Handle(ctx, Message{User: "admin", Text: "kredits list"}, ui.NewRecordingUI())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCustomKeyword(t *testing.T) {
	f := newFixture(t, Settings{Keyword: "karma"})
	f.explorer.balances["akBumi"] = common.AssetBalance{Balance: 4}

	assert.Equal(t, []string{"bumi has 4 karma"}, f.hear(t, "anyone", "", "karma show bumi"))
	assert.Empty(t, f.hear(t, "anyone", "", "kredits show bumi"))
}

func TestAuthorizers(t *testing.T) {
	admins := NewAdminList([]string{" Bumi ", "", "galfert"})
	assert.True(t, admins.IsAdmin("bumi"))
	assert.True(t, admins.IsAdmin("GALFERT"))
	assert.False(t, admins.IsAdmin(""))
	assert.False(t, admins.IsAdmin("mallory"))
	assert.False(t, NewAdminList(nil).IsAdmin("bumi"))
	assert.True(t, AllowAll{}.IsAdmin("anyone"))
}
