package batch

import (
	"strings"

	"github.com/bevalen/tune-energy-ocr-ui/internal/common"
)

// Request carries the trigger parameters for one batch run.
type Request struct {
	Customer        string `json:"customer"`
	LocationID      string `json:"location_id"`
	LocationAddress string `json:"location_address"`
	Email           string `json:"email"`
}

// Validate checks required fields. The address is optional.
func (r *Request) Validate() error {
	r.Customer = strings.TrimSpace(r.Customer)
	r.LocationID = strings.TrimSpace(r.LocationID)
	r.Email = strings.TrimSpace(r.Email)

	if r.Customer == "" {
		return common.NewAppError("INVALID_REQUEST", "customer is required", common.ErrInvalidInput)
	}
	if r.LocationID == "" {
		return common.NewAppError("INVALID_REQUEST", "location_id is required", common.ErrInvalidInput)
	}
	if r.Email == "" {
		return common.NewAppError("INVALID_REQUEST", "email is required", common.ErrInvalidInput)
	}
	return nil
}
