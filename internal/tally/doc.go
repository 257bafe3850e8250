// Package tally maintains the rolling chat statistics crowdplay decides on.
//
// Counts is the tally of one sample interval: total chat messages, total
// recognized crowd commands, and one counter per command. Observe matches a
// message payload against the command vocabulary — single-key presses
// case-insensitively, whole words against a fixed set of French and English
// variants in both cases.
//
// Aggregator keeps a bounded history of fixed-duration buckets (the open
// bucket last) and two trailing window sums over it: the long window feeds
// the journal and gauges, the short window feeds the send decision. Both
// sums are maintained incrementally — a bucket is added once when it closes
// and subtracted once when it leaves the window, never recomputed — so the
// two overlapping windows share a single history.
package tally
