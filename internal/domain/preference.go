package domain

// ProviderPreference is the user's saved provider ordering plus the hybrid
// assist toggle. The engine consumes only the ordering when it builds a
// fallback chain; the toggle drives the UI's manual "try next provider"
// continuation.
type ProviderPreference struct {
	Order        []Provider
	HybridAssist bool
}

// DefaultPreference returns the ordering used when no preference has been
// saved or the saved file cannot be parsed.
func DefaultPreference() ProviderPreference {
	return ProviderPreference{Order: AllProviders()}
}

// Sanitized drops unknown providers and duplicates while preserving order,
// falling back to the default ordering if nothing valid remains.
func (p ProviderPreference) Sanitized() ProviderPreference {
	seen := make(map[Provider]bool, len(p.Order))
	var order []Provider
	for _, prov := range p.Order {
		if !prov.Known() || seen[prov] {
			continue
		}
		seen[prov] = true
		order = append(order, prov)
	}
	if len(order) == 0 {
		order = AllProviders()
	}
	return ProviderPreference{Order: order, HybridAssist: p.HybridAssist}
}
