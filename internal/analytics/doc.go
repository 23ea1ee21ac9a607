// Package analytics projects an ordered record sequence into the dashboard
// views: state summary, typology summary, district hotspots, score
// distribution, national statistics, decomposition rows and the
// state × typology matrix.
//
// Every function is pure: it reads the full sequence, never mutates it, keeps
// no state between calls and returns a fresh result. Degenerate input (empty
// sequence, all optional fields absent) yields zero or empty results, never
// an error. Grouping uses maps rebuilt on each call; ranking sorts are stable
// so ties keep the order in which a group was first encountered.
package analytics
