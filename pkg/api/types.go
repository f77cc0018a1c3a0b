package api

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/platinummonkey/cadmdt/pkg/navigation"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// PermissionList accepts either a single permission string or an array of them
type PermissionList []string

// UnmarshalJSON implements json.Unmarshaler
func (p *PermissionList) UnmarshalJSON(data []byte) error {
	// null means no requirement, same as leaving the field out
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = PermissionList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("permissions must be a string or an array of strings")
	}
	*p = many
	return nil
}

// Permissions converts the list without validating it. Strings outside the
// vocabulary never match an effective set.
func (p PermissionList) Permissions() []permissions.Permission {
	out := make([]permissions.Permission, len(p))
	for i, s := range p {
		out[i] = permissions.Permission(s)
	}
	return out
}

// CheckRequest is the body of POST .../check-permission
type CheckRequest struct {
	Permissions PermissionList `json:"permissions"`
	Mode        string         `json:"mode,omitempty"`
}

// CheckResponse answers an AND or OR check
type CheckResponse struct {
	Granted bool `json:"granted"`
}

// BulkCheckResponse answers a BULK check with one entry per requested permission
type BulkCheckResponse struct {
	Results map[string]bool `json:"results"`
}

// UserPermissionsResponse is the sidebar feed
type UserPermissionsResponse struct {
	Permissions []permissions.Permission `json:"permissions"`
	IsPowerUser bool                     `json:"isPowerUser"`
	Navigation  []navigation.Group       `json:"navigation"`
}
