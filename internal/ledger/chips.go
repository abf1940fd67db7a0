package ledger

import "sort"

// DefaultDenominations are the chip values offered at the table
var DefaultDenominations = []int{5, 10, 20, 50, 100, 500}

// ChipStack breaks amount into chips, largest denomination first. Any
// remainder smaller than the smallest denomination is dropped.
func ChipStack(amount int, denominations []int) []int {
	denoms := make([]int, 0, len(denominations))
	for _, d := range denominations {
		if d > 0 {
			denoms = append(denoms, d)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(denoms)))

	var chips []int
	for _, d := range denoms {
		for amount >= d {
			chips = append(chips, d)
			amount -= d
		}
	}
	return chips
}
