// Package gridpath finds shortest paths on a 2-D occupancy grid.
//
// It exposes four layers:
//
//   - Grid: an immutable blocked/free snapshot with 4-directional neighbors.
//   - Search and Stepper: generic A* run to completion or one expansion at a time.
//   - Controller: runs searches off the caller's goroutine, letting a new
//     request supersede one still in flight.
//   - Selection: the start/end state machine for manual and live modes that
//     decides when a search is submitted.
//
// Searches hold no state across calls; the same request always yields the
// same Path.
package gridpath
