package org

// IsSubordinate reports whether candidate sits strictly below ancestor in
// the unit tree. It walks the Superior chain upward from candidate; absence
// of the relation is a normal negative result. Nil inputs are false, and a
// unit is never subordinate to itself.
func IsSubordinate(candidate, ancestor *Unit) bool {
	if candidate == nil || ancestor == nil {
		return false
	}
	for cur := candidate.Superior; cur != nil; cur = cur.Superior {
		if cur.Code == ancestor.Code {
			return true
		}
	}
	return false
}

// IsSameOrSubordinate reports whether candidate is reference itself or any
// unit below it.
func IsSameOrSubordinate(candidate, reference *Unit) bool {
	if candidate == nil || reference == nil {
		return false
	}
	if candidate.Code == reference.Code {
		return true
	}
	return IsSubordinate(candidate, reference)
}

// IsImmediateSuperior reports whether candidateSuperior is the direct parent
// of unit.
func IsImmediateSuperior(unit, candidateSuperior *Unit) bool {
	if unit == nil || candidateSuperior == nil || unit.Superior == nil {
		return false
	}
	return unit.Superior.Code == candidateSuperior.Code
}
