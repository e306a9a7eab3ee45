// Package session holds the viewer state cached at login: the authenticated
// flag, role, group memberships, office scope and backend tokens.
package session

import (
	"context"
	"encoding/json"
	"slices"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// Storage keys. Every key is written on login and removed together on logout.
const (
	KeyAuthenticated = "isAuthenticated"
	KeyRole          = "userRole"
	KeyGroups        = "userGroups"
	KeyOfficeID      = "officeId"
	KeyUserID        = "userId"
	KeyUserName      = "userName"
	KeyUserEmail     = "userEmail"
	KeyAccessToken   = "access_token"
	KeyIDToken       = "id_token"
	KeyRefreshToken  = "refresh_token"
)

// Keys lists every storage key.
var Keys = []string{
	KeyAuthenticated, KeyRole, KeyGroups, KeyOfficeID, KeyUserID,
	KeyUserName, KeyUserEmail, KeyAccessToken, KeyIDToken, KeyRefreshToken,
}

// Session is a client-side cache, never authoritative. The zero value is an
// anonymous viewer.
type Session struct {
	Authenticated bool
	Role          Role
	Groups        []string
	OfficeID      string
	UserID        string
	UserName      string
	UserEmail     string
	AccessToken   string
	IDToken       string
	RefreshToken  string
}

// Store persists sessions by id.
type Store interface {
	// Get returns the zero Session when id is unknown.
	Get(ctx context.Context, id string) (Session, error)
	Set(ctx context.Context, id string, s Session) error
	Clear(ctx context.Context, id string) error
}

// EffectiveRole degrades anything that is not admin to manager.
func (s Session) EffectiveRole() Role {
	if s.Role == RoleAdmin {
		return RoleAdmin
	}
	return RoleManager
}

func (s Session) InGroup(name string) bool {
	return slices.Contains(s.Groups, name)
}

// Fields encodes s as storage key/value pairs. Empty values are omitted so a
// partially populated session does not write blank keys.
func (s Session) Fields() map[string]string {
	out := make(map[string]string, len(Keys))
	if s.Authenticated {
		out[KeyAuthenticated] = "true"
	}
	groups := s.Groups
	if groups == nil {
		groups = []string{}
	}
	raw, _ := json.Marshal(groups)
	out[KeyGroups] = string(raw)

	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set(KeyRole, string(s.Role))
	set(KeyOfficeID, s.OfficeID)
	set(KeyUserID, s.UserID)
	set(KeyUserName, s.UserName)
	set(KeyUserEmail, s.UserEmail)
	set(KeyAccessToken, s.AccessToken)
	set(KeyIDToken, s.IDToken)
	set(KeyRefreshToken, s.RefreshToken)
	return out
}

// FromFields decodes storage key/value pairs. The authenticated flag is
// presence-only: any non-empty value counts, "false" included.
func FromFields(fields map[string]string) Session {
	var s Session
	s.Authenticated = fields[KeyAuthenticated] != ""
	if raw := fields[KeyGroups]; raw != "" {
		var groups []string
		if json.Unmarshal([]byte(raw), &groups) == nil {
			s.Groups = groups
		}
	}
	s.Role = Role(fields[KeyRole])
	s.OfficeID = fields[KeyOfficeID]
	s.UserID = fields[KeyUserID]
	s.UserName = fields[KeyUserName]
	s.UserEmail = fields[KeyUserEmail]
	s.AccessToken = fields[KeyAccessToken]
	s.IDToken = fields[KeyIDToken]
	s.RefreshToken = fields[KeyRefreshToken]
	return s
}
