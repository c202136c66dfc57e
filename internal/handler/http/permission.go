package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PermissionHandler interface {
	GetRolePermissions(w http.ResponseWriter, r *http.Request)
	SetRolePermissions(w http.ResponseWriter, r *http.Request)
}

type PermissionHandlerImpl struct {
	rbacService rbac.RBACService
}

func NewPermissionHandler(rbacService rbac.RBACService) PermissionHandler {
	return &PermissionHandlerImpl{rbacService: rbacService}
}

// GetRolePermissions implements PermissionHandler.
func (p *PermissionHandlerImpl) GetRolePermissions(w http.ResponseWriter, r *http.Request) {
	resp, err := p.rbacService.ListRolePermissions(r.Context(), actorID(r), chi.URLParam(r, "role"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, resp)
}

// SetRolePermissions implements PermissionHandler.
func (p *PermissionHandlerImpl) SetRolePermissions(w http.ResponseWriter, r *http.Request) {
	var req rbac.SetRolePermissionsRequest
	if !decodeJSON(w, r, &req, "SetRolePermissions") {
		return
	}
	req.ActorID = actorID(r)
	req.Role = chi.URLParam(r, "role")

	resp, err := p.rbacService.SetRolePermissions(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, resp)
}
