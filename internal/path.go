// Package internal holds helpers shared by the one-shot and step-wise
// searches.
package internal

import "slices"

// ReconstructPath follows cameFrom back from goal to start and returns the
// nodes in start-to-goal order. If the chain breaks before start, the path
// begins at the last node reached.
func ReconstructPath[N comparable](cameFrom map[N]N, goal, start N) []N {
	path := []N{goal}
	for node := goal; node != start; {
		prev, ok := cameFrom[node]
		if !ok {
			break
		}
		path = append(path, prev)
		node = prev
	}
	slices.Reverse(path)
	return path
}
