package router

import (
	"strings"
)

// Authorizer decides who may manage the address book and move funds.
type Authorizer interface {
	IsAdmin(user string) bool
}

// AdminList authorizes a fixed set of users, compared case-insensitively.
// An empty list authorizes nobody.
type AdminList map[string]struct{}

func NewAdminList(users []string) AdminList {
	l := AdminList{}
	for _, u := range users {
		u = strings.ToLower(strings.TrimSpace(u))
		if u != "" {
			l[u] = struct{}{}
		}
	}
	return l
}

func (l AdminList) IsAdmin(user string) bool {
	_, ok := l[strings.ToLower(strings.TrimSpace(user))]
	return ok
}

// AllowAll is for the local CLI, where the operator owns the config anyway.
type AllowAll struct{}

func (AllowAll) IsAdmin(string) bool { return true }
