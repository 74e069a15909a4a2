package chilla

// DefaultModulo is the number of attended days that completes one cycle.
const DefaultModulo = 40

// Step is the result of applying the streak rule to a total attendance count.
type Step struct {
	Streak    int
	Completed bool
	// Cycle is the number of completed cycles at this count.
	Cycle int64
}

// Advance maps a total attendance count to the stored streak value.
// A positive multiple of modulo completes a cycle and resets the streak to 0.
func Advance(totalCount int64, modulo int) Step {
	if modulo <= 0 {
		modulo = DefaultModulo
	}
	if totalCount < 0 {
		totalCount = 0
	}
	m := int64(modulo)
	rem := totalCount % m
	return Step{
		Streak:    int(rem),
		Completed: rem == 0 && totalCount > 0,
		Cycle:     totalCount / m,
	}
}
