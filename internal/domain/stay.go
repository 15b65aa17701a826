package domain

// Stay is the half-open night range [CheckIn, CheckOut).
type Stay struct {
	CheckIn  Date `json:"check_in"`
	CheckOut Date `json:"check_out"`
}

func NewStay(checkIn, checkOut Date) Stay {
	return Stay{CheckIn: checkIn, CheckOut: checkOut}
}

func (s Stay) Nights() int {
	return s.CheckIn.DaysUntil(s.CheckOut)
}

// Overlaps reports whether two stays share at least one night:
// [a,b) and [c,d) overlap iff a < d and c < b.
func (s Stay) Overlaps(o Stay) bool {
	return s.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(s.CheckOut)
}

// Covers reports whether night d belongs to the stay.
func (s Stay) Covers(d Date) bool {
	return !d.Before(s.CheckIn) && d.Before(s.CheckOut)
}
