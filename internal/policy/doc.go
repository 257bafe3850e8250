// Package policy decides what crowdplay sends and when.
//
// MostUsed reduces a window sum to the representative command label via a
// fixed weight table. Engine gates the actual send: the pace adapts to chat
// activity (a busy chat shortens the interval down to the hard rate floor),
// and nothing is sent before the long window is populated or while the
// command share of chat is below the thresholds.
package policy
