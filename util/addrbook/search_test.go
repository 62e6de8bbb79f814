package addrbook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/kredits/common"
)

func seed(t *testing.T, b *Book, entries map[string]string) {
	t.Helper()
	for nick, addr := range entries {
		_, err := b.Add(context.Background(), nick, addr)
		require.NoError(t, err)
	}
}

func nicks(entries []common.AddressBookEntry) []string {
	out := []string{}
	for _, e := range entries {
		out = append(out, e.Nickname)
	}
	return out
}

func TestSuggest(t *testing.T) {
	b, _ := newBook(t)
	seed(t, b, map[string]string{
		"galfert": "akA",
		"raucao":  "akB",
		"bumi":    "akC",
	})

	got, err := b.Suggest(context.Background(), "glf")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "galfert", got[0])

	got, err = b.Suggest(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	b, _ := newBook(t)
	seed(t, b, map[string]string{
		"galfert":     "akGalfert111",
		"galfert-dev": "akGalfert222",
		"raucao":      "akRaucao333",
		"bumi":        "akBumi444",
	})

	found, err := b.Find(ctx, "GALF")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"galfert", "galfert-dev"}, nicks(found))

	found, err = b.Find(ctx, "raucoo")
	require.NoError(t, err)
	assert.Equal(t, []string{"raucao"}, nicks(found))

	found, err = b.Find(ctx, "akbumi")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "akBumi444", found[0].Address)

	found, err = b.Find(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindValidation(t *testing.T) {
	b, _ := newBook(t)
	_, err := b.Find(context.Background(), "  ")
	var ve *common.ValidationError
	assert.True(t, errors.As(err, &ve))
}
