// Package domain holds the data model shared by the reconstruction, response
// and persistence layers: fixed-point prices, normalized order events, book
// snapshots, classified trades and structured artifact keys.
package domain
