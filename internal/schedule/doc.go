// Package schedule holds the time values and pure resolvers used to derive
// presentation statuses at read time.
//
// Windows are same-day closed intervals in local wall-clock time. Resolve maps
// a window, a stored lifecycle and the current instant to a display status;
// ResolveDay reduces the calendar entries of one date to a single day status.
package schedule
