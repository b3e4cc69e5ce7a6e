// Package response computes lagged self- and cross-response functions and
// trade-sign correlators.
//
// For lags tau = 0..TauMax-1 a day contributes
//
//	Sums[tau]   += obs(t, tau) * sign_j[t]
//	Counts[tau] += 1 if sign_j[t] != 0
//
// over t in [0, len-tau-1), where obs is the midpoint return of ticker i
// from t to t+tau+1 or, for the correlator, the sign of ticker i at t+tau+1.
// Days are combined by summing numerators and counts separately; the year
// value is the ratio of the grand totals. Lags without samples are NaN.
package response
