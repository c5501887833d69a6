package plan

// Plan identifies a subscription tier.
type Plan string

const (
	Trial   Plan = "Trial"
	Free    Plan = "Free"
	Basic   Plan = "Basic"
	Premium Plan = "Premium"
)

// All returns every known plan.
func All() []Plan {
	return []Plan{Trial, Free, Basic, Premium}
}

// Recurring returns the plans subject to the monthly billing-cycle reset.
// Trial is excluded: it expires via the hourly sweep instead.
func Recurring() []Plan {
	return []Plan{Free, Basic, Premium}
}

// Valid reports whether p is one of the four known plans.
func (p Plan) Valid() bool {
	switch p {
	case Trial, Free, Basic, Premium:
		return true
	}
	return false
}

func (p Plan) String() string { return string(p) }
