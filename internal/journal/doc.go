// Package journal persists the per-interval chat statistics as an
// append-only tab-separated file, one record per reporting interval.
package journal
