package ledger

import "github.com/google/uuid"

// RecalcParentSums returns a copy of data where every parent category holds
// the sum of its direct children, computed bottom-up. Leaf values and keys
// that are not category codes are copied unchanged; a missing child counts
// as 0. data is not modified.
func RecalcParentSums(data ValueMap, cats []Category) ValueMap {
	out := data.Clone()

	children := make(map[uuid.UUID][]Category)
	for _, c := range cats {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	summed := make(map[uuid.UUID]float64)
	var sum func(c Category) float64
	sum = func(c Category) float64 {
		kids := children[c.ID]
		if len(kids) == 0 {
			return out[c.Code]
		}
		if v, ok := summed[c.ID]; ok {
			return v
		}
		var total float64
		for _, k := range kids {
			total += sum(k)
		}
		summed[c.ID] = total
		out[c.Code] = total
		return total
	}

	for _, c := range cats {
		if c.ParentID == nil {
			sum(c)
		}
	}
	return out
}

// scaleValues multiplies every value by factor.
func scaleValues(data ValueMap, factor float64) ValueMap {
	out := make(ValueMap, len(data))
	for k, v := range data {
		out[k] = v * factor
	}
	return out
}

// perUnitFromAccounting divides every value by acres. Zero acres yields 0
// for every key.
func perUnitFromAccounting(data ValueMap, acres float64) ValueMap {
	out := make(ValueMap, len(data))
	for k, v := range data {
		if acres > 0 {
			out[k] = v / acres
		} else {
			out[k] = 0
		}
	}
	return out
}
