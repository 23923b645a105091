package window

import "github.com/buoyantio/ringstack/ring"

// Returns the mean of the latencies retained in history.
func Mean(history *ring.Stack[int]) int {
	sum := 0

	for n := range history.Values() {
		sum += n
	}

	count := history.Len()
	if count > 0 {
		return sum / count
	} else {
		return 0
	}
}

// Given a history of recent latencies, determine if a Change
// Indicator should be generated.
//
// For each 10x over the mean the latest item is, we add a single plus
// sign up to 3.
//
// For each 10x under the mean the latest item is, we add a single
// minus sign up to 3.
//
// Otherwise, or when there is no non-zero history to compare against,
// we return no change indicator.
func CalculateChangeIndicator(history *ring.Stack[int], latest int) string {
	mad := Mean(history)
	if mad == 0 {
		return ""
	}

	switch {
	case latest >= (mad * 1000):
		return "+++"
	case latest >= (mad * 100):
		return "++"
	case latest >= (mad * 10):
		return "+"
	case latest <= (mad / 1000):
		return "---"
	case latest <= (mad / 100):
		return "--"
	case latest <= (mad / 10):
		return "-"
	}

	return ""
}
