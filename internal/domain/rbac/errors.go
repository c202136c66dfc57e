package rbac

import "errors"

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidRole      = errors.New("invalid role")
	ErrSelfLockout      = errors.New("cannot remove permissions.manage from your own role")
)
