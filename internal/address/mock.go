package address

// MockNormalizer is a test implementation of Normalizer.
type MockNormalizer struct {
	NormalizeFunc func(addr Address) Address
}

// Compile-time check that MockNormalizer implements Normalizer.
var _ Normalizer = (*MockNormalizer)(nil)

// NewMockNormalizer creates a mock normalizer for testing.
func NewMockNormalizer() *MockNormalizer {
	return &MockNormalizer{}
}

// Normalize delegates to the configured function or passes the address
// through unchanged.
func (m *MockNormalizer) Normalize(addr Address) Address {
	if m.NormalizeFunc != nil {
		return m.NormalizeFunc(addr)
	}
	return addr
}
