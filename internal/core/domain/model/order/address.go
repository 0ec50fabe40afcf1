package order

import (
	"errors"

	"fulfillment/internal/pkg/errs"
)

// Address is the delivery destination of an order. It is an immutable value
// object validated at construction.
type Address struct {
	street     string
	city       string
	postalCode string
	country    string
}

// NewAddress creates a validated Address. All four fields are required.
func NewAddress(street, city, postalCode, country string) (Address, error) {
	var errList []error
	if street == "" {
		errList = append(errList, errs.NewValueIsRequiredError("street"))
	}
	if city == "" {
		errList = append(errList, errs.NewValueIsRequiredError("city"))
	}
	if postalCode == "" {
		errList = append(errList, errs.NewValueIsRequiredError("postalCode"))
	}
	if country == "" {
		errList = append(errList, errs.NewValueIsRequiredError("country"))
	}
	if err := errors.Join(errList...); err != nil {
		return Address{}, err
	}

	return Address{
		street:     street,
		city:       city,
		postalCode: postalCode,
		country:    country,
	}, nil
}

// Street returns the street line of the address.
func (a Address) Street() string {
	return a.street
}

// City returns the city of the address.
func (a Address) City() string {
	return a.city
}

// PostalCode returns the postal code of the address.
func (a Address) PostalCode() string {
	return a.postalCode
}

// Country returns the country of the address.
func (a Address) Country() string {
	return a.country
}

// IsZero reports whether the address was never constructed.
func (a Address) IsZero() bool {
	return a == Address{}
}
