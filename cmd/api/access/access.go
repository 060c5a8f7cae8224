// Package access derives the caller identity from request headers and decides
// whether that identity may run a given operation.
package access

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/library-service/cmd/api/pkgerrors"
)

const (
	HeaderRole   = "x-user-role"
	HeaderUserID = "x-user-id"
)

type Role string

const (
	RoleNone  Role = ""
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

var ValidRoles = []Role{RoleAdmin, RoleUser}

type Operation string

const (
	OpIndex            Operation = "index"
	OpListBooks        Operation = "books.list"
	OpGetBook          Operation = "books.get"
	OpCreateBook       Operation = "books.create"
	OpUpdateBook       Operation = "books.update"
	OpDeleteBook       Operation = "books.delete"
	OpBorrow           Operation = "borrow.create"
	OpListBorrowLogs   Operation = "borrow.logs"
	OpListMyBorrowLogs Operation = "borrow.my-logs"
)

// Policy lists the roles allowed to run an operation. An empty Roles list
// marks a public operation.
type Policy struct {
	Roles           []Role
	RequireIdentity bool
}

var Policies = map[Operation]Policy{
	OpIndex:            {},
	OpListBooks:        {},
	OpGetBook:          {},
	OpCreateBook:       {Roles: []Role{RoleAdmin}},
	OpUpdateBook:       {Roles: []Role{RoleAdmin}},
	OpDeleteBook:       {Roles: []Role{RoleAdmin}},
	OpBorrow:           {Roles: []Role{RoleUser}, RequireIdentity: true},
	OpListBorrowLogs:   {Roles: []Role{RoleAdmin}},
	OpListMyBorrowLogs: {Roles: []Role{RoleUser}, RequireIdentity: true},
}

var ErrResponseMissingRole = pkgerrors.ErrResponse{Kind: pkgerrors.KindMissingHeader, Code: 200, Message: "Missing required header: " + HeaderRole}
var ErrResponseMissingUserID = pkgerrors.ErrResponse{Kind: pkgerrors.KindMissingHeader, Code: 201, Message: "Missing required header: " + HeaderUserID}
var ErrResponseInvalidRole = pkgerrors.ErrResponse{Kind: pkgerrors.KindInvalidRole, Code: 202, Message: "Invalid role"}
var ErrResponseInvalidIdentity = pkgerrors.ErrResponse{Kind: pkgerrors.KindInvalidIdentity, Code: 203, Message: "Invalid " + HeaderUserID + ": must be a positive integer"}
var ErrResponseForbidden = pkgerrors.ErrResponse{Kind: pkgerrors.KindForbidden, Code: 204, Message: "Access denied"}
var ErrResponseUnknownOperation = pkgerrors.ErrResponse{Kind: pkgerrors.KindForbidden, Code: 205, Message: "Access denied. Operation has no access policy"}

// Identity is the normalized caller. UserID is zero when no identity was sent.
type Identity struct {
	Role   Role
	UserID int64
}

/* Normalizes a raw role header value. Unknown non-empty roles are an error, never silently dropped. */
func ParseRole(raw string) (Role, error) {
	normalized := Role(strings.ToLower(strings.TrimSpace(raw)))
	if normalized == RoleNone {
		return RoleNone, nil
	}
	for _, r := range ValidRoles {
		if normalized == r {
			return normalized, nil
		}
	}
	return RoleNone, ErrResponseInvalidRole.WithMessage(fmt.Sprintf("Invalid role: '%s'. Valid roles are: %s", normalized, joinRoles(ValidRoles, ", ")))
}

/* Parses the identity header. It must be a positive base-10 integer. */
func ParseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, ErrResponseInvalidIdentity
	}
	return id, nil
}

/* Checks the headers of a request against the policy of op. No handler logic may run when it fails. */
func Authorize(op Operation, roleHeader, userIDHeader string) (Identity, error) {
	policy, ok := Policies[op]
	if !ok {
		return Identity{}, ErrResponseUnknownOperation
	}

	role, err := ParseRole(roleHeader)
	if err != nil {
		return Identity{}, err
	}

	if len(policy.Roles) == 0 {
		id := Identity{Role: role}
		if role != RoleNone && strings.TrimSpace(userIDHeader) != "" {
			// Public operations tolerate a malformed identity; it is simply not attached.
			id.UserID, _ = ParseUserID(userIDHeader)
		}
		return id, nil
	}

	if role == RoleNone {
		return Identity{}, ErrResponseMissingRole
	}
	if !policy.allows(role) {
		return Identity{}, ErrResponseForbidden.WithMessage("Access denied. This endpoint requires role: " + joinRoles(policy.Roles, " or "))
	}

	id := Identity{Role: role}
	if !policy.RequireIdentity {
		return id, nil
	}

	if strings.TrimSpace(userIDHeader) == "" {
		return Identity{}, ErrResponseMissingUserID
	}
	id.UserID, err = ParseUserID(userIDHeader)
	if err != nil {
		return Identity{}, err
	}
	return id, nil
}

func (p Policy) allows(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func joinRoles(roles []Role, sep string) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return strings.Join(names, sep)
}

type ctxKey struct{}

func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

/* Returns the identity placed on the context by the gate. */
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
