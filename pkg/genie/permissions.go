package genie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Genie spaces use object type "genie" in the Permissions API, not
// "genie-spaces".
const permissionsPath = "/api/2.0/permissions/genie"

// PermissionLevel is a level of access to a space.
type PermissionLevel string

const (
	CanRead   PermissionLevel = "CAN_READ"
	CanRun    PermissionLevel = "CAN_RUN"
	CanEdit   PermissionLevel = "CAN_EDIT"
	CanManage PermissionLevel = "CAN_MANAGE"
)

// PermissionLevels lists the levels from least to most capable.
var PermissionLevels = []PermissionLevel{CanRead, CanRun, CanEdit, CanManage}

func (l PermissionLevel) rank() int {
	for i, level := range PermissionLevels {
		if level == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is a known level.
func (l PermissionLevel) Valid() bool {
	return l.rank() >= 0
}

// Includes reports whether holding l grants everything other grants.
// CAN_MANAGE includes CAN_EDIT includes CAN_RUN includes CAN_READ.
func (l PermissionLevel) Includes(other PermissionLevel) bool {
	return l.Valid() && other.Valid() && l.rank() >= other.rank()
}

// ParsePermissionLevel accepts "CAN_RUN", "can_run" or "can-run".
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	l := PermissionLevel(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !l.Valid() {
		return "", NewError("parse permission level", ErrConstraint,
			"unknown level %q, want one of %v", s, PermissionLevels)
	}
	return l, nil
}

// AccessControlRequest grants one principal a permission level. Exactly one
// of the principal fields must be set.
type AccessControlRequest struct {
	UserName             string          `json:"user_name,omitempty"`
	GroupName            string          `json:"group_name,omitempty"`
	ServicePrincipalName string          `json:"service_principal_name,omitempty"`
	PermissionLevel      PermissionLevel `json:"permission_level"`
}

// GrantUser, GrantGroup and GrantServicePrincipal build ACL entries.
func GrantUser(name string, level PermissionLevel) AccessControlRequest {
	return AccessControlRequest{UserName: name, PermissionLevel: level}
}

func GrantGroup(name string, level PermissionLevel) AccessControlRequest {
	return AccessControlRequest{GroupName: name, PermissionLevel: level}
}

func GrantServicePrincipal(name string, level PermissionLevel) AccessControlRequest {
	return AccessControlRequest{ServicePrincipalName: name, PermissionLevel: level}
}

// Principal returns the name of the principal the entry applies to.
func (r AccessControlRequest) Principal() string {
	switch {
	case r.UserName != "":
		return r.UserName
	case r.GroupName != "":
		return r.GroupName
	default:
		return r.ServicePrincipalName
	}
}

// Validate checks that exactly one principal is set and the level is known.
func (r AccessControlRequest) Validate() error {
	set := 0
	for _, p := range []string{r.UserName, r.GroupName, r.ServicePrincipalName} {
		if p != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of user_name, group_name, service_principal_name must be set, got %d", set)
	}
	return validation.Validate(string(r.PermissionLevel),
		validation.Required,
		validation.In("CAN_READ", "CAN_RUN", "CAN_EDIT", "CAN_MANAGE"),
	)
}

type accessControlList struct {
	AccessControlList []AccessControlRequest `json:"access_control_list"`
}

// Permission is one level held by a principal, possibly inherited from a
// parent object.
type Permission struct {
	PermissionLevel     PermissionLevel `json:"permission_level"`
	Inherited           bool            `json:"inherited,omitempty"`
	InheritedFromObject []string        `json:"inherited_from_object,omitempty"`
}

// AccessControlResponse is one entry of a space's ACL.
type AccessControlResponse struct {
	UserName             string       `json:"user_name,omitempty"`
	GroupName            string       `json:"group_name,omitempty"`
	ServicePrincipalName string       `json:"service_principal_name,omitempty"`
	DisplayName          string       `json:"display_name,omitempty"`
	AllPermissions       []Permission `json:"all_permissions"`
}

// Principal returns the best available name for the entry.
func (a AccessControlResponse) Principal() string {
	for _, name := range []string{a.UserName, a.GroupName, a.ServicePrincipalName, a.DisplayName} {
		if name != "" {
			return name
		}
	}
	return "unknown"
}

// Levels returns the levels held, in response order.
func (a AccessControlResponse) Levels() []PermissionLevel {
	levels := make([]PermissionLevel, 0, len(a.AllPermissions))
	for _, p := range a.AllPermissions {
		levels = append(levels, p.PermissionLevel)
	}
	return levels
}

// Highest returns the most capable level held, direct or inherited.
func (a AccessControlResponse) Highest() PermissionLevel {
	var best PermissionLevel
	for _, p := range a.AllPermissions {
		if !best.Valid() || p.PermissionLevel.Includes(best) {
			best = p.PermissionLevel
		}
	}
	return best
}

// ObjectPermissions is the permission set of a space.
type ObjectPermissions struct {
	ObjectID          string                  `json:"object_id"`
	ObjectType        string                  `json:"object_type"`
	AccessControlList []AccessControlResponse `json:"access_control_list"`
}

// Lookup finds the entry for a principal.
func (p *ObjectPermissions) Lookup(principal string) (AccessControlResponse, bool) {
	for _, entry := range p.AccessControlList {
		if entry.Principal() == principal {
			return entry, true
		}
	}
	return AccessControlResponse{}, false
}

// PermissionLevelDescription describes an assignable level.
type PermissionLevelDescription struct {
	PermissionLevel PermissionLevel `json:"permission_level"`
	Description     string          `json:"description"`
}

// PermissionLevelsResponse lists the levels assignable on a space.
type PermissionLevelsResponse struct {
	PermissionLevels []PermissionLevelDescription `json:"permission_levels"`
}

func spacePermissionsPath(spaceID string) string {
	return fmt.Sprintf("%s/%s", permissionsPath, url.PathEscape(spaceID))
}

// GetPermissions returns the current ACL of a space.
func (c *Client) GetPermissions(ctx context.Context, spaceID string) (*ObjectPermissions, error) {
	var perms ObjectPermissions
	if err := c.doRequest(ctx, http.MethodGet, spacePermissionsPath(spaceID), nil, nil, &perms); err != nil {
		return nil, fmt.Errorf("failed to get permissions for space %s: %w", spaceID, err)
	}
	return &perms, nil
}

// GetPermissionLevels lists the levels assignable on a space.
func (c *Client) GetPermissionLevels(ctx context.Context, spaceID string) (*PermissionLevelsResponse, error) {
	path := spacePermissionsPath(spaceID) + "/permissionLevels"

	var levels PermissionLevelsResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &levels); err != nil {
		return nil, fmt.Errorf("failed to get permission levels for space %s: %w", spaceID, err)
	}
	return &levels, nil
}

// UpdatePermissions adds or changes the given entries, leaving all other
// entries in place.
func (c *Client) UpdatePermissions(ctx context.Context, spaceID string, acl ...AccessControlRequest) (*ObjectPermissions, error) {
	return c.writePermissions(ctx, http.MethodPatch, "update permissions", spaceID, acl)
}

// SetPermissions replaces the whole ACL with the given entries. Principals
// not listed lose their direct grants.
func (c *Client) SetPermissions(ctx context.Context, spaceID string, acl ...AccessControlRequest) (*ObjectPermissions, error) {
	return c.writePermissions(ctx, http.MethodPut, "set permissions", spaceID, acl)
}

func (c *Client) writePermissions(ctx context.Context, method, op, spaceID string, acl []AccessControlRequest) (*ObjectPermissions, error) {
	for i, entry := range acl {
		if err := entry.Validate(); err != nil {
			return nil, &Error{Op: op, Err: ErrConstraint, Msg: fmt.Sprintf("entry %d: %v", i, err)}
		}
	}

	if acl == nil {
		acl = []AccessControlRequest{}
	}

	var perms ObjectPermissions
	body := accessControlList{AccessControlList: acl}
	if err := c.doRequest(ctx, method, spacePermissionsPath(spaceID), nil, body, &perms); err != nil {
		return nil, fmt.Errorf("failed to %s for space %s: %w", op, spaceID, err)
	}

	c.logger.Info("wrote permissions", "space_id", spaceID, "method", method, "entries", len(acl))
	return &perms, nil
}
