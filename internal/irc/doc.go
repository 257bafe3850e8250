// Package irc implements the chat-protocol layer of crowdplay: the
// connection, the incremental line decoder and the message classifier.
//
// Decoder accumulates raw bytes (Feed) and splits them into terminated
// lines (NextLine). It tolerates arbitrary fragmentation — a terminator
// split across two reads decodes exactly like an unfragmented stream.
//
// ParseMessage classifies one line into a Message without allocating per
// field: it records byte ranges into the owned raw line and the accessors
// (Tags, Prefix, Target, Trailing, Origin) return substrings of it.
// Classification never fails; an unmatched command token yields a Message
// with Command == Unknown and the token preserved.
//
// Client ties a connection to a Decoder. A background pump performs the
// blocking reads; the session loop pulls buffered bytes with Drain and
// decoded messages with Next, so all parsing state stays single-owner.
// Outbound lines (Login, Join, Pong, Privmsg, SendLinef) are written
// CRLF-terminated in a single write each.
package irc
