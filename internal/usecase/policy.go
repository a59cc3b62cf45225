package usecase

import (
	"github.com/quad400/kaydee-boutique/internal/domain"
)

// Policy decides what a principal may do. It is evaluated by the use cases
// before any storage call.
type Policy interface {
	CanManageCatalog(p *domain.Principal) error
	CanUseCart(p *domain.Principal) error
}

type rolePolicy struct{}

// NewRolePolicy returns the admin/customer policy: only admins write the
// catalog, any authenticated principal owns a cart.
func NewRolePolicy() Policy {
	return rolePolicy{}
}

func (rolePolicy) CanManageCatalog(p *domain.Principal) error {
	if p == nil || p.ID == "" {
		return domain.Unauthorizedf("authentication required")
	}
	if !p.IsAdmin() {
		return domain.Forbiddenf("user does not have permission to modify the catalog")
	}
	return nil
}

func (rolePolicy) CanUseCart(p *domain.Principal) error {
	if p == nil || p.ID == "" {
		return domain.Unauthorizedf("authentication required")
	}
	return nil
}
