package irc

import "strings"

// Command is the classification assigned to a decoded line.
type Command int

// The closed set of commands crowdplay recognizes. Anything else is kept as
// Unknown with the raw command token preserved in Message.Token.
const (
	Unknown Command = iota
	Welcome         // 001
	YourHost        // 002
	Created         // 003
	MyInfo          // 004
	MotdStart       // 375
	MotdLine        // 372
	MotdEnd         // 376
	NameReply       // 353
	EndOfNames      // 366
	PrivMsg
	Ping
	Join
)

var commandStrings = [...]string{
	Unknown:    "unknown",
	Welcome:    "welcome",
	YourHost:   "yourhost",
	Created:    "created",
	MyInfo:     "myinfo",
	MotdStart:  "motd_start",
	MotdLine:   "motd_line",
	MotdEnd:    "motd_end",
	NameReply:  "name_reply",
	EndOfNames: "end_of_names",
	PrivMsg:    "privmsg",
	Ping:       "ping",
	Join:       "join",
}

func (c Command) String() string {
	if c >= 0 && int(c) < len(commandStrings) {
		return commandStrings[c]
	}
	return "unknown"
}

var commandTokens = map[string]Command{
	"001":     Welcome,
	"002":     YourHost,
	"003":     Created,
	"004":     MyInfo,
	"375":     MotdStart,
	"372":     MotdLine,
	"376":     MotdEnd,
	"353":     NameReply,
	"366":     EndOfNames,
	"PRIVMSG": PrivMsg,
	"PING":    Ping,
	"JOIN":    Join,
}

// span is a half-open byte range into Message.Raw. The zero span means the
// field is absent.
type span struct {
	start, end int
}

func (s span) empty() bool {
	return s.start >= s.end
}

// Message is one classified protocol line. The raw line text is owned by
// the Message; field accessors return substrings of it, so no per-field
// copies are made during parsing. All ranges fall on token boundaries
// (single-byte spaces), so they are valid UTF-8 cut points for any UTF-8
// input.
type Message struct {
	Raw     string
	Command Command

	// Token holds the raw command token when Command is Unknown.
	Token string

	tags     span
	prefix   span
	target   span
	trailing int // byte offset of the trailing payload; 0 means absent
}

// Identity is the parsed sender of a line: nick!user@host for a chat user,
// nick@host without an account, or a bare server host.
type Identity struct {
	Nick string
	User string
	Host string
}

// ParseMessage classifies one decoded line. It never rejects: every input,
// including an empty or malformed line, yields exactly one Message — at
// worst one with Command == Unknown and no fields.
//
// The line is split into at most five space-delimited tokens; the fifth
// keeps the remainder of the line verbatim so a trailing payload may
// contain spaces. A leading '@' token is recorded as tags and a leading ':'
// token as the sender prefix, each shifting the positions of the tokens
// that follow. The first unshifted token selects the Command, which in turn
// decides how many further tokens carry fields.
func ParseMessage(line string) *Message {
	m := &Message{Raw: line, Command: Unknown}

	offset := 0
	shift := 0

parse:
	for index := 0; offset <= len(line); index++ {
		rem := line[offset:]
		var part string
		if index == 4 {
			part = rem
		} else if sp := strings.IndexByte(rem, ' '); sp >= 0 {
			part = rem[:sp]
		} else {
			part = rem
		}

		switch eff := index - shift; {
		case eff == 0 && strings.HasPrefix(part, "@"):
			m.tags = span{offset + 1, offset + len(part)}
			shift++

		case eff == 0 && strings.HasPrefix(part, ":"):
			m.prefix = span{offset + 1, offset + len(part)}
			shift++

		case eff == 0:
			cmd, ok := commandTokens[part]
			if !ok {
				m.Token = part
			}
			m.Command = cmd

		default:
			switch m.Command {
			case Welcome, YourHost, Created, MotdStart, MotdLine, MotdEnd, PrivMsg:
				if eff == 1 {
					m.target = span{offset, offset + len(part)}
				} else if eff == 2 {
					if strings.HasPrefix(part, ":") {
						m.trailing = offset + 1
					}
					break parse
				}
			case Join:
				if eff == 1 {
					m.target = span{offset, offset + len(part)}
				}
				break parse
			case Ping:
				if eff == 1 && strings.HasPrefix(part, ":") {
					m.trailing = offset + 1
				}
				break parse
			default:
				break parse
			}
		}

		offset += len(part) + 1
	}

	return m
}

// Tags returns the message tags, without the leading '@'.
func (m *Message) Tags() (string, bool) {
	if m.tags.empty() {
		return "", false
	}
	return m.Raw[m.tags.start:m.tags.end], true
}

// Prefix returns the raw sender prefix, without the leading ':'.
func (m *Message) Prefix() (string, bool) {
	if m.prefix.empty() {
		return "", false
	}
	return m.Raw[m.prefix.start:m.prefix.end], true
}

// Target returns the message target (channel or nick).
func (m *Message) Target() (string, bool) {
	if m.target.empty() {
		return "", false
	}
	return m.Raw[m.target.start:m.target.end], true
}

// Trailing returns the free-text payload: everything from the ':' payload
// marker to the end of the line, spaces included. The payload may be
// present and empty.
func (m *Message) Trailing() (string, bool) {
	if m.trailing == 0 {
		return "", false
	}
	return m.Raw[m.trailing:], true
}

// Origin decomposes the sender prefix into an Identity. The prefix splits
// on '@' into the user part and the host, and the user part on '!' into
// nick and account; a prefix without '@' is a bare server host.
func (m *Message) Origin() (Identity, bool) {
	p, ok := m.Prefix()
	if !ok {
		return Identity{}, false
	}

	var id Identity
	if head, host, found := strings.Cut(p, "@"); found {
		id.Host = host
		if nick, user, split := strings.Cut(head, "!"); split {
			id.Nick = nick
			id.User = user
		} else {
			id.Nick = head
		}
	} else {
		id.Host = p
	}
	return id, true
}
