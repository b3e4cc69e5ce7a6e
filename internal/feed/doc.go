// Package feed loads decoded day files produced by the external ITCH and
// TAQ decoders.
//
// Files live under the data root as
//
//	itch/<year>/<TICKER>_<YYYY-MM-DD>_orders.csv
//	taq/<year>/<TICKER>_<YYYY-MM-DD>_quotes.csv
//	taq/<year>/<TICKER>_<YYYY-MM-DD>_trades.csv
//
// optionally gzip-compressed with a trailing ".gz". A day without a file is
// an expected data gap: loaders report it with found=false and a nil error.
package feed
