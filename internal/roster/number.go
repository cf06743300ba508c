// Package roster implements member number assignment and the
// alphanumeric ordering applied on every member listing surface.
package roster

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var numberRx = regexp.MustCompile(`^(\d+)([A-Za-z]*)$`)

// SplitNumber breaks a member number into its integer prefix and letter
// suffix. ok is false for numbers that do not match the
// digits-then-optional-letters shape; those sort after everything else.
func SplitNumber(number string) (prefix int, suffix string, ok bool) {
	m := numberRx.FindStringSubmatch(strings.TrimSpace(number))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// Prefix overflows int; treat as non-conforming.
		return 0, "", false
	}
	return n, strings.ToUpper(m[2]), true
}

// Less orders two member numbers: ascending integer prefix, then
// uppercased suffix with the empty suffix first. Non-conforming numbers
// go last, ordered by raw string.
func Less(a, b string) bool {
	ap, as, aok := SplitNumber(a)
	bp, bs, bok := SplitNumber(b)
	if aok != bok {
		return aok
	}
	if !aok {
		return a < b
	}
	if ap != bp {
		return ap < bp
	}
	return as < bs
}

// SortNumbers sorts in place by the listing order.
func SortNumbers(numbers []string) {
	sort.SliceStable(numbers, func(i, j int) bool { return Less(numbers[i], numbers[j]) })
}

// NextSeed is the integer the next auto-assigned number starts from:
// one above the highest integer prefix present. Bulk ingestion seeds a
// running counter from this once per batch.
func NextSeed(existing []string) int {
	max := 0
	for _, num := range existing {
		if p, _, ok := SplitNumber(num); ok && p > max {
			max = p
		}
	}
	return max + 1
}

// NextNumber assigns the next member number. An empty roster starts at 1.
func NextNumber(existing []string) string {
	return strconv.Itoa(NextSeed(existing))
}

// Taken reports whether number collides with any existing number after
// trimming surrounding whitespace.
func Taken(existing []string, number string) bool {
	number = strings.TrimSpace(number)
	for _, num := range existing {
		if strings.TrimSpace(num) == number {
			return true
		}
	}
	return false
}
