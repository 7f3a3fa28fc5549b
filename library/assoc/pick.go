package assoc

// Weighted pairs an item with its selection weight.
type Weighted[T any] struct {
	Item   T
	Weight float64
}

// WeightedPick draws one item with probability proportional to its weight.
//
// It draws r uniformly in [0, total) and subtracts weights in order until r
// drops to zero or below. If rounding leaves r positive after the scan, the
// last item wins. ok is false when items is empty or the total weight is <= 0.
func WeightedPick[T any](items []Weighted[T], rnd Rand) (picked T, ok bool) {
	var total float64
	for _, it := range items {
		total += it.Weight
	}
	if total <= 0 || len(items) == 0 {
		return picked, false
	}

	r := rnd.Float64() * total
	for _, it := range items {
		r -= it.Weight
		if r <= 0 {
			return it.Item, true
		}
	}

	return items[len(items)-1].Item, true
}
