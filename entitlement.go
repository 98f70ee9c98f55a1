package inkwell

// Entitlement answers whether the premium feature is active. The engine only
// reports it; gating features is the caller's job.
type Entitlement interface {
	PremiumActive() bool
}

// StaticEntitlement is a fixed entitlement answer, typically read from
// configuration.
type StaticEntitlement bool

// PremiumActive implements Entitlement.
func (s StaticEntitlement) PremiumActive() bool {
	return bool(s)
}

// EntitlementFunc adapts a function to Entitlement.
type EntitlementFunc func() bool

// PremiumActive implements Entitlement.
func (f EntitlementFunc) PremiumActive() bool {
	return f()
}
