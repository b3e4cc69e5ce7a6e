// Package operations runs lobstat batch work.
//
// Work is split into independent units: one ReconstructUnit per
// (ticker, day), one ResponseUnit per (ticker pair, year, parameters) and
// one StatisticsUnit per (ticker, year). A Runner executes units with
// bounded concurrency. A failing unit is recorded in the Report with a
// classified UnitError and never stops its siblings.
//
// Units exchange data only through the artifact store: ResponseUnit reads
// the midpoint, trade sign and trade series written by ReconstructUnit.
package operations
