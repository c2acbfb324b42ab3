package address

// BasicNormalizer substitutes defaults for missing fields without
// external API calls.
type BasicNormalizer struct{}

// Compile-time check that BasicNormalizer implements Normalizer.
var _ Normalizer = (*BasicNormalizer)(nil)

// NewBasicNormalizer creates the default, defaulting-only normalizer.
func NewBasicNormalizer() *BasicNormalizer {
	return &BasicNormalizer{}
}

// Normalize fills absent fields with placeholder values.
func (n *BasicNormalizer) Normalize(addr Address) Address {
	if addr.Name == "" {
		addr.Name = UnknownField
	}
	if addr.Line1 == "" {
		addr.Line1 = UnknownField
	}
	if addr.City == "" {
		addr.City = UnknownField
	}
	if addr.State == "" {
		addr.State = UnknownField
	}
	if addr.PostalCode == "" {
		addr.PostalCode = UnknownPostalCode
	}
	return addr
}
