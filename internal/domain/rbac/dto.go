package rbac

import (
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

type SetRolePermissionsRequest struct {
	ActorID     string   `json:"-"`
	Role        string   `json:"-"`
	Permissions []string `json:"permissions"`
}

func (r *SetRolePermissionsRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Role(r.Role).IsValid() {
		errs.Add("role", "role must be one of admin, hr, manager, employee")
	}

	seen := make(map[string]bool, len(r.Permissions))
	for i, p := range r.Permissions {
		field := fmt.Sprintf("permissions[%d]", i)
		if !Permission(p).IsValid() {
			errs.Add(field, fmt.Sprintf("unknown permission '%s'", p))
			continue
		}
		if seen[p] {
			errs.Add(field, fmt.Sprintf("duplicate permission '%s'", p))
		}
		seen[p] = true
	}

	return errs.Err()
}

type RolePermissionsResponse struct {
	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions"`
}
