package service

import (
	"context"
	"fmt"
	"strings"

	"photovault/internal/model"
)

// Access is the outcome of the single authorization check every read
// and mutation goes through.
type Access int

const (
	AccessDenied Access = iota
	AccessReader
	AccessOwner
)

// GrantStore is the permission-grant side of the record store.
type GrantStore interface {
	Grant(ctx context.Context, fileID string, userID string) error
	Revoke(ctx context.Context, fileID string, userID string) error
	Exists(ctx context.Context, fileID string, userID string) (bool, error)
	ListForFile(ctx context.Context, fileID string) ([]model.PermissionGrant, error)
}

// resolveAccess decides {Owner, PermittedReader, Denied} for a caller
// against one record. The grant lookup only matters for non-owners;
// grants never confer mutation rights.
func resolveAccess(ctx context.Context, grants GrantStore, caller model.Caller, rec model.FileRecord) (Access, error) {
	if strings.TrimSpace(caller.ID) == "" {
		return AccessDenied, model.ErrUnauthenticated
	}

	if rec.OwnerID == caller.ID {
		return AccessOwner, nil
	}

	permitted, err := grants.Exists(ctx, rec.ID, caller.ID)
	if err != nil {
		return AccessDenied, fmt.Errorf("check permission grant: %w", err)
	}
	if permitted {
		return AccessReader, nil
	}

	return AccessDenied, nil
}
