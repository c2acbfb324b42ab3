// Package address normalizes addresses collected during hosted checkout
// before they are attached to orders.
package address

// Defaults substituted for fields the payment provider did not collect.
// Orders must always carry complete addresses, even for sparse checkout
// submissions.
const (
	UnknownField      = "Unknown"
	UnknownPostalCode = "00000"
)

// Normalizer fills in missing address fields. Implementations can layer
// external verification APIs (USPS, Lob, SmartyStreets); the default
// performs defaulting only.
type Normalizer interface {
	// Normalize returns a complete address, substituting defaults for
	// absent name, line1, city, state and postal code. Country passes
	// through untouched.
	Normalize(addr Address) Address
}

// Address represents a physical address for shipping or billing.
type Address struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Complete reports whether all required fields are present.
func (a Address) Complete() bool {
	return a.Name != "" && a.Line1 != "" && a.City != "" &&
		a.State != "" && a.PostalCode != ""
}
