// Package bot runs the crowdplay session loop.
//
// A Session owns one connection's full state — client, window aggregator,
// policy engine, journal counter, welcome flag — and nothing survives it: a
// reconnect starts a fresh Session from zero.
//
// Run iterates a single-owner cooperative loop: rotate the window if due
// (journal and status surfaces refresh on rotation), evaluate the send
// policy, drain and handle every decoded inbound message, then sleep the
// poll interval. Protocol handling is minimal on purpose: the welcome reply
// triggers the channel join, keep-alive probes are answered, chat messages
// are tallied, and everything else is a debug trace. Malformed input never
// stops the loop; any transport error ends the session and is returned to
// the supervisor.
package bot
