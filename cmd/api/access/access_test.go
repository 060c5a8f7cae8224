package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/library-service/cmd/api/access"
	"github.com/library-service/cmd/api/pkgerrors"
	"github.com/matryer/is"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		op       access.Operation
		role     string
		userID   string
		wantErr  error
		wantKind pkgerrors.Kind
		want     access.Identity
	}{
		{"user borrows with a valid id", access.OpBorrow, "user", "10", nil, "", access.Identity{Role: access.RoleUser, UserID: 10}},
		{"role is case insensitive", access.OpBorrow, "USER", "11", nil, "", access.Identity{Role: access.RoleUser, UserID: 11}},
		{"missing role", access.OpBorrow, "", "10", access.ErrResponseMissingRole, pkgerrors.KindMissingHeader, access.Identity{}},
		{"unknown role", access.OpBorrow, "librarian", "10", access.ErrResponseInvalidRole, pkgerrors.KindInvalidRole, access.Identity{}},
		{"mixed case admin on a user operation", access.OpBorrow, "ADMIN", "", access.ErrResponseForbidden, pkgerrors.KindForbidden, access.Identity{}},
		{"missing user id", access.OpBorrow, "user", "", access.ErrResponseMissingUserID, pkgerrors.KindMissingHeader, access.Identity{}},
		{"zero user id", access.OpBorrow, "user", "0", access.ErrResponseInvalidIdentity, pkgerrors.KindInvalidIdentity, access.Identity{}},
		{"non numeric user id", access.OpListMyBorrowLogs, "user", "12abc", access.ErrResponseInvalidIdentity, pkgerrors.KindInvalidIdentity, access.Identity{}},
		{"admin reads all logs", access.OpListBorrowLogs, "Admin", "", nil, "", access.Identity{Role: access.RoleAdmin}},
		{"user cannot read all logs", access.OpListBorrowLogs, "user", "3", access.ErrResponseForbidden, pkgerrors.KindForbidden, access.Identity{}},
		{"public catalog without headers", access.OpListBooks, "", "", nil, "", access.Identity{}},
		{"public catalog still rejects unknown roles", access.OpGetBook, "guest", "", access.ErrResponseInvalidRole, pkgerrors.KindInvalidRole, access.Identity{}},
		{"unknown operation", access.Operation("nope"), "admin", "", access.ErrResponseUnknownOperation, pkgerrors.KindForbidden, access.Identity{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)

			got, err := access.Authorize(tt.op, tt.role, tt.userID)
			if tt.wantErr == nil {
				is.NoErr(err)
				is.Equal(got, tt.want)
				return
			}
			is.True(errors.Is(err, tt.wantErr))
			var errR pkgerrors.ErrResponse
			is.True(errors.As(err, &errR))
			is.Equal(errR.Kind, tt.wantKind)
			is.Equal(got, access.Identity{})
		})
	}
}

func TestAuthorizeMessages(t *testing.T) {
	is := is.New(t)

	_, err := access.Authorize(access.OpBorrow, "admin", "")
	is.Equal(err.Error(), "Access denied. This endpoint requires role: user")

	_, err = access.Authorize(access.OpCreateBook, "Guest", "")
	is.Equal(err.Error(), "Invalid role: 'guest'. Valid roles are: admin, user")
}

func TestContext(t *testing.T) {
	is := is.New(t)

	_, ok := access.FromContext(context.Background())
	is.True(!ok)

	ctx := access.NewContext(context.Background(), access.Identity{Role: access.RoleUser, UserID: 7})
	id, ok := access.FromContext(ctx)
	is.True(ok)
	is.Equal(id.UserID, int64(7))
}
