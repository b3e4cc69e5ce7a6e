// Package normalize turns decoded feed records into typed events.
//
// Records arrive as text fields exactly as the external decoder writes them.
// Each record is either converted into a domain event or rejected with a
// RejectError that names the reason. Rejections are local: a Normalizer
// counts and logs them and carries on with the rest of the stream.
//
// Prices are accepted either as integer ticks ("1234500") or as decimal
// dollars ("123.45"); both end up as domain.Ticks.
package normalize
