package assoc

// UsedSet holds normalized tokens of every response already emitted in a session.
type UsedSet map[string]struct{}

// NewUsedSet builds a set from raw words, normalizing each one.
func NewUsedSet(words []string) UsedSet {
	used := make(UsedSet, len(words))
	for _, w := range words {
		used.Add(w)
	}

	return used
}

// Add normalizes raw and records it.
func (u UsedSet) Add(raw string) {
	u[Normalize(raw)] = struct{}{}
}

// Has reports whether the normalized token was already used.
func (u UsedSet) Has(token string) bool {
	_, ok := u[token]
	return ok
}
