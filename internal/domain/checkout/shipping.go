package checkout

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError reports the first failing shipping field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ShippingInfo is a validated delivery address. Once attached to a
// draft it is copied, never mutated.
type ShippingInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

var (
	phonePattern   = regexp.MustCompile(`^[0-9]{10}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// ValidateShipping checks fields in a fixed order and reports only the
// first violation. The order is part of the user-visible contract:
// name, phone, address, city, state, pincode.
func ValidateShipping(in ShippingInfo) (*ShippingInfo, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Pincode = strings.TrimSpace(in.Pincode)

	switch {
	case in.Name == "":
		return nil, &ValidationError{Field: "name", Message: "Name is required"}
	case !phonePattern.MatchString(in.Phone):
		return nil, &ValidationError{Field: "phone", Message: "Phone must be 10 digits"}
	case in.Address == "":
		return nil, &ValidationError{Field: "address", Message: "Address is required"}
	case in.City == "":
		return nil, &ValidationError{Field: "city", Message: "City is required"}
	case in.State == "":
		return nil, &ValidationError{Field: "state", Message: "State is required"}
	case !pincodePattern.MatchString(in.Pincode):
		return nil, &ValidationError{Field: "pincode", Message: "Pincode must be 6 digits"}
	}

	return &in, nil
}
