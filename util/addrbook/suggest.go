package addrbook

import (
	"context"

	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

// nickSource adapts a slice of entries to fuzzy.Source.
type nickSource []string

func (s nickSource) Len() int {
	return len(s)
}

func (s nickSource) String(i int) string {
	return s[i]
}

// Suggest returns up to three known nicknames that look like nick, best
// match first. Used for "did you mean" hints.
func (b *Book) Suggest(ctx context.Context, nick string) ([]string, error) {
	if nick == "" {
		return nil, nil
	}
	entries, err := b.Entries(ctx)
	if err != nil {
		return nil, err
	}
	source := make(nickSource, len(entries))
	for i, e := range entries {
		source[i] = e.Nickname
	}

	matches := fuzzy.FindFrom(nick, source)
	result := []string{}
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		result = append(result, source[matches[i].Index])
	}
	return result, nil
}
