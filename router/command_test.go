package router

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		text string
		want Command
	}{
		{"kredits address add bumi akBumi123", AddressAddCommand{Nickname: "bumi", Address: "akBumi123"}},
		{"KREDITS Address ADD bumi akBumi123", AddressAddCommand{Nickname: "bumi", Address: "akBumi123"}},
		{"kredits address add bumi", AddressAddCommand{Nickname: "bumi"}},
		{"kredits address add", AddressAddCommand{}},
		{"kredits address remove bumi", AddressRemoveCommand{Nickname: "bumi"}},
		{"kredits address remove", AddressRemoveCommand{}},
		{"kredits address list", AddressListCommand{}},
		{"kredits address find bum", AddressFindCommand{Query: "bum"}},
		{"kredits address find", AddressFindCommand{}},
		{"kredits show bumi", ShowCommand{Nickname: "bumi"}},
		{"hey kredits show bumi ", ShowCommand{Nickname: "bumi"}},
		{"kredits list", ListCommand{}},
		{"kredits send 5 to bumi", SendCommand{Quantity: 5, Nickname: "bumi"}},
		{"kredits send to bumi", SendCommand{Nickname: "bumi"}},
		{"kredits send 5to bumi for the docs", SendCommand{Quantity: 5, Nickname: "bumi"}},
		{"kredits send 99999999999999999999 to bumi", SendCommand{Quantity: math.MaxInt64, Nickname: "bumi"}},
		{"bumi++", IncrementCommand{Nickname: "bumi"}},
		{"thanks bumi ++", IncrementCommand{Nickname: "bumi"}},
	}
	p := NewParser("kredits")
	for _, c := range cases {
		got, ok := p.Parse(c.text)
		if assert.True(t, ok, c.text) {
			assert.Equal(t, c.want, got, c.text)
		}
	}
}

func TestParseIgnoresUnrelatedText(t *testing.T) {
	p := NewParser("kredits")
	for _, text := range []string{
		"",
		"good morning",
		"kredits",
		"kredits show",
		"kreditsshow bumi",
		"kredits listing",
		"kredits address",
		"send 5 to bumi",
		"bumi +",
	} {
		_, ok := p.Parse(text)
		assert.False(t, ok, text)
	}
}

func TestParseKeywordIsLiteral(t *testing.T) {
	p := NewParser("k.b")
	_, ok := p.Parse("kxb list")
	assert.False(t, ok)

	got, ok := p.Parse("k.b list")
	assert.True(t, ok)
	assert.Equal(t, ListCommand{}, got)
}

func TestTextRoundTrips(t *testing.T) {
	commands := []Command{
		AddressAddCommand{Nickname: "bumi", Address: "akBumi"},
		AddressRemoveCommand{Nickname: "bumi"},
		AddressListCommand{},
		AddressFindCommand{Query: "bum"},
		ShowCommand{Nickname: "bumi"},
		ListCommand{},
		SendCommand{Quantity: 5, Nickname: "bumi"},
		SendCommand{Nickname: "bumi"},
		IncrementCommand{Nickname: "bumi"},
	}
	for _, c := range commands {
		got, ok := Parse("kredits", Text("kredits", c))
		assert.True(t, ok)
		assert.Equal(t, c, got)
	}
}
