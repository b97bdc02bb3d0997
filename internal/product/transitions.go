package product

// allowedTransitions lists the status changes a product may go through.
// Staying in the current status is always allowed.
var allowedTransitions = map[Status][]Status{
	StatusDraft:  {StatusActive, StatusDeleted},
	StatusActive: {StatusDeleted},
}

// CanTransition reports whether a product may move from one status to another.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
