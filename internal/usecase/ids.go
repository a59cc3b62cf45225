package usecase

import (
	"github.com/google/uuid"
	"github.com/quad400/kaydee-boutique/internal/domain"
)

// parseID validates an identifier and returns its canonical form.
func parseID(kind, id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", domain.Validationf("invalid %s ID: %q", kind, id)
	}
	return u.String(), nil
}
