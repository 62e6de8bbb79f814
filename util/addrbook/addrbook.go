// Package addrbook keeps the nickname to asset address book of the bot.
//
// The book is a single JSON object stored under one key. Every operation
// reads it from the store and every mutation writes the whole object back;
// nothing is cached in between, so two commands mutating the book at the
// same time can lose one of the writes.
package addrbook

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/tranvictor/kredits/common"
	"github.com/tranvictor/kredits/util/store"
)

// Namespace prefixes every key the book writes.
const Namespace = "openassets"

func bookKey(keyword string) string {
	return "addressBook:" + keyword
}

// StorageKey is the full key of the book for a bot keyword in the
// underlying store.
func StorageKey(keyword string) string {
	return Namespace + ":" + bookKey(keyword)
}

type Book struct {
	store   store.Store
	keyword string
}

func New(s store.Store, keyword string) *Book {
	return &Book{store: store.Namespaced(s, Namespace), keyword: keyword}
}

func (b *Book) key() string {
	return bookKey(b.keyword)
}

func (b *Book) content(ctx context.Context) (map[string]string, error) {
	raw, found, err := b.store.Get(ctx, b.key())
	if err != nil {
		return nil, fmt.Errorf("reading address book: %w", err)
	}
	content := map[string]string{}
	if !found || len(raw) == 0 {
		return content, nil
	}
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("address book under %s is not a json object: %w", StorageKey(b.keyword), err)
	}
	return content, nil
}

func (b *Book) setContent(ctx context.Context, content map[string]string) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return err
	}
	if err := b.store.Set(ctx, b.key(), raw); err != nil {
		return fmt.Errorf("writing address book: %w", err)
	}
	return nil
}

// Add inserts or overwrites the entry for nick.
func (b *Book) Add(ctx context.Context, nick, address string) (string, error) {
	if strings.TrimSpace(nick) == "" || strings.TrimSpace(address) == "" {
		return "", common.NewValidationError(
			"Sorry Dave, I can't do that. Need both a nickname and address to add an addressbook entry.",
		)
	}
	content, err := b.content(ctx)
	if err != nil {
		return "", err
	}
	content[nick] = address
	if err := b.setContent(ctx, content); err != nil {
		return "", err
	}
	return fmt.Sprintf("Added %s's address to the addressbook.", nick), nil
}

// Remove deletes the entry for nick. Removing an unknown nick is fine.
func (b *Book) Remove(ctx context.Context, nick string) (string, error) {
	if strings.TrimSpace(nick) == "" {
		return "", common.NewValidationError(
			"If you want me to delete someone's address, how about you give me their name?",
		)
	}
	content, err := b.content(ctx)
	if err != nil {
		return "", err
	}
	delete(content, nick)
	if err := b.setContent(ctx, content); err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed %s's entry from the addressbook.", nick), nil
}

// Entries returns the book sorted by nickname.
func (b *Book) Entries(ctx context.Context) ([]common.AddressBookEntry, error) {
	content, err := b.content(ctx)
	if err != nil {
		return nil, err
	}
	return sortedEntries(content), nil
}

func sortedEntries(content map[string]string) []common.AddressBookEntry {
	names := make([]string, 0, len(content))
	for name := range content {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]common.AddressBookEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, common.AddressBookEntry{Nickname: name, Address: content[name]})
	}
	return entries
}

// List renders one "<nick> | <address>" line per entry with the separators
// aligned, or a single hint line when the book is empty.
func (b *Book) List(ctx context.Context) ([]string, error) {
	entries, err := b.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []string{fmt.Sprintf(
			"No entries in addressbook yet. Use \"%s address add [name] [address]\" to add one.",
			b.keyword,
		)}, nil
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Nickname
	}
	width := MaxWidth(names)

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s | %s", PadRight(e.Nickname, width), e.Address))
	}
	return lines, nil
}

// LookupAddress is an exact, case sensitive lookup.
func (b *Book) LookupAddress(ctx context.Context, nick string) (string, bool, error) {
	content, err := b.content(ctx)
	if err != nil {
		return "", false, err
	}
	address, found := content[nick]
	return address, found, nil
}

// LookupName returns the nickname holding address. When several nicknames
// share the address the lexicographically first one wins.
func (b *Book) LookupName(ctx context.Context, address string) (string, bool, error) {
	content, err := b.content(ctx)
	if err != nil {
		return "", false, err
	}
	for _, e := range sortedEntries(content) {
		if e.Address == address {
			return e.Nickname, true, nil
		}
	}
	return "", false, nil
}

// MaxWidth is the largest display width among names.
func MaxWidth(names []string) int {
	width := 0
	for _, n := range names {
		if w := runewidth.StringWidth(n); w > width {
			width = w
		}
	}
	return width
}

// PadRight pads s with spaces up to the display width w.
func PadRight(s string, w int) string {
	visible := runewidth.StringWidth(s)
	if visible >= w {
		return s
	}
	return s + strings.Repeat(" ", w-visible)
}
