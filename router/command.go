package router

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Command is one of the chat commands below. The set is closed: Execute
// switches over the concrete types.
type Command interface {
	// Name labels the command in logs and metrics.
	Name() string
}

type AddressAddCommand struct {
	Nickname string
	Address  string
}

type AddressRemoveCommand struct {
	Nickname string
}

type AddressListCommand struct{}

type AddressFindCommand struct {
	Query string
}

type ShowCommand struct {
	Nickname string
}

type ListCommand struct{}

// SendCommand moves Quantity units to Nickname. Quantity 0 means the
// configured default.
type SendCommand struct {
	Quantity int64
	Nickname string
}

// IncrementCommand is the "nick++" shorthand for sending the default
// quantity.
type IncrementCommand struct {
	Nickname string
}

func (AddressAddCommand) Name() string    { return "address_add" }
func (AddressRemoveCommand) Name() string { return "address_remove" }
func (AddressListCommand) Name() string   { return "address_list" }
func (AddressFindCommand) Name() string   { return "address_find" }
func (ShowCommand) Name() string          { return "show" }
func (ListCommand) Name() string          { return "list" }
func (SendCommand) Name() string          { return "send" }
func (IncrementCommand) Name() string     { return "increment" }

// Parser recognises commands addressed with a keyword. Matching is case
// insensitive and, like a chat bot listening to a room, the command may
// appear anywhere in the message.
type Parser struct {
	keyword string

	addressFind *regexp.Regexp
	address     *regexp.Regexp
	send        *regexp.Regexp
	show        *regexp.Regexp
	list        *regexp.Regexp
	increment   *regexp.Regexp
}

func NewParser(keyword string) *Parser {
	kw := `(?i)(?:^|\s)` + regexp.QuoteMeta(keyword) + `\s+`
	return &Parser{
		keyword:     keyword,
		addressFind: regexp.MustCompile(kw + `address\s+find\b\s*(.*)`),
		address:     regexp.MustCompile(kw + `address\s+(add|remove|list)\b\s*([a-zA-Z0-9_\-]*)\s*([a-zA-Z0-9_\-]*)`),
		send:        regexp.MustCompile(kw + `send\s+(\d*)\s?to\s+(\w+)`),
		show:        regexp.MustCompile(kw + `show\s+(.+)`),
		list:        regexp.MustCompile(kw + `list\b`),
		increment:   regexp.MustCompile(`(?i)(\w+)\s?\+\+`),
	}
}

func (p *Parser) Keyword() string {
	return p.keyword
}

// Parse returns the command in text, if any. Forms are tried from the most
// to the least specific so every message yields at most one command.
func (p *Parser) Parse(text string) (Command, bool) {
	if m := p.addressFind.FindStringSubmatch(text); m != nil {
		return AddressFindCommand{Query: strings.TrimSpace(m[1])}, true
	}
	if m := p.address.FindStringSubmatch(text); m != nil {
		switch strings.ToLower(m[1]) {
		case "add":
			return AddressAddCommand{Nickname: m[2], Address: m[3]}, true
		case "remove":
			return AddressRemoveCommand{Nickname: m[2]}, true
		default:
			return AddressListCommand{}, true
		}
	}
	if m := p.send.FindStringSubmatch(text); m != nil {
		return SendCommand{Quantity: parseQuantity(m[1]), Nickname: m[2]}, true
	}
	if m := p.show.FindStringSubmatch(text); m != nil {
		nick := strings.TrimSpace(m[1])
		if nick != "" {
			return ShowCommand{Nickname: nick}, true
		}
	}
	if p.list.MatchString(text) {
		return ListCommand{}, true
	}
	if m := p.increment.FindStringSubmatch(text); m != nil {
		return IncrementCommand{Nickname: m[1]}, true
	}
	return nil, false
}

// Parse is a one-off NewParser(keyword).Parse(text).
func Parse(keyword, text string) (Command, bool) {
	return NewParser(keyword).Parse(text)
}

// parseQuantity reads the digits captured by the send form. Too many digits
// saturate so the quantity policy rejects them.
func parseQuantity(digits string) int64 {
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// Text renders c back into the chat form Parse accepts.
func Text(keyword string, c Command) string {
	switch c := c.(type) {
	case AddressAddCommand:
		return strings.TrimSpace(fmt.Sprintf("%s address add %s %s", keyword, c.Nickname, c.Address))
	case AddressRemoveCommand:
		return strings.TrimSpace(fmt.Sprintf("%s address remove %s", keyword, c.Nickname))
	case AddressListCommand:
		return keyword + " address list"
	case AddressFindCommand:
		return strings.TrimSpace(fmt.Sprintf("%s address find %s", keyword, c.Query))
	case ShowCommand:
		return fmt.Sprintf("%s show %s", keyword, c.Nickname)
	case ListCommand:
		return keyword + " list"
	case SendCommand:
		if c.Quantity == 0 {
			return fmt.Sprintf("%s send to %s", keyword, c.Nickname)
		}
		return fmt.Sprintf("%s send %d to %s", keyword, c.Quantity, c.Nickname)
	case IncrementCommand:
		return c.Nickname + "++"
	}
	return ""
}
