package enums

import "fmt"

// OrganizationType distinguishes buying stores from selling suppliers.
type OrganizationType string

const (
	OrganizationTypeStore    OrganizationType = "STORE"
	OrganizationTypeSupplier OrganizationType = "SUPPLIER"
)

var validOrganizationTypes = []OrganizationType{
	OrganizationTypeStore,
	OrganizationTypeSupplier,
}

// String implements fmt.Stringer.
func (o OrganizationType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrganizationType.
func (o OrganizationType) IsValid() bool {
	for _, candidate := range validOrganizationTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrganizationType converts raw input into a OrganizationType.
func ParseOrganizationType(value string) (OrganizationType, error) {
	for _, candidate := range validOrganizationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid organization type %q", value)
}
