package models

// Limit is a request ceiling. The Unlimited sentinel disables the ceiling
// entirely; any non-negative value is an absolute cap.
type Limit int64

// Unlimited disables a ceiling
const Unlimited Limit = -1

// IsUnlimited reports whether the ceiling is disabled
func (l Limit) IsUnlimited() bool {
	return l < 0
}

// Exceeded reports whether used requests have reached the ceiling
func (l Limit) Exceeded(used int64) bool {
	if l.IsUnlimited() {
		return false
	}
	return used >= int64(l)
}
