package deadline

// Urgency maps days-left to a 6-level ordinal, 6 being most urgent.
// nil means no deadline was detected. Total over all inputs; the result
// is always within [1,6].
func Urgency(daysLeft *int) int {
	if daysLeft == nil {
		return 1
	}
	switch d := *daysLeft; {
	case d <= 0:
		return 6
	case d <= 1:
		return 5
	case d <= 3:
		return 4
	case d <= 7:
		return 3
	case d <= 14:
		return 2
	default:
		return 1
	}
}
