// Package statistics computes descriptive quote and trade statistics:
// record counts, the average quoted spread and the intra-second midpoint
// error, per day and averaged over a year.
package statistics
