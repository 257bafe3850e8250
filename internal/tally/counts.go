package tally

// VoteNames lists the per-command counters in wire order: journal columns
// and metric label values use this order.
var VoteNames = [...]string{
	"up", "left", "down", "right",
	"a", "b", "x", "y",
	"democracy", "anarchy", "start",
}

// Counts is the tally of one sample interval. Messages counts every chat
// message seen; Commands counts the subset whose payload matched the
// command vocabulary; the remaining fields count the individual commands.
type Counts struct {
	Messages uint32
	Commands uint32

	Up    uint32
	Left  uint32
	Down  uint32
	Right uint32
	A     uint32
	B     uint32
	X     uint32
	Y     uint32
	Demo  uint32
	Anar  uint32
	Start uint32
}

// Votes returns the per-command counters in the same order as VoteNames.
func (c Counts) Votes() [11]uint32 {
	return [11]uint32{
		c.Up, c.Left, c.Down, c.Right,
		c.A, c.B, c.X, c.Y,
		c.Demo, c.Anar, c.Start,
	}
}

// Observe records one chat message payload and returns the name of the
// matched command, or "" when the payload is not a command.
//
// A single-byte payload is matched case-insensitively against the key
// vocabulary (movement keys have two aliases each); longer payloads must
// equal one of the whole-word variants exactly.
func (c *Counts) Observe(payload string) string {
	c.Messages++

	name := ""
	if len(payload) == 1 {
		b := payload[0]
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		switch b {
		case 'u', 'n':
			c.Up++
			name = "up"
		case 'l', 'w':
			c.Left++
			name = "left"
		case 'd', 's':
			c.Down++
			name = "down"
		case 'r', 'e':
			c.Right++
			name = "right"
		case 'a':
			c.A++
			name = "a"
		case 'b':
			c.B++
			name = "b"
		case 'x':
			c.X++
			name = "x"
		case 'y':
			c.Y++
			name = "y"
		}
	} else {
		switch payload {
		case "haut", "HAUT":
			c.Up++
			name = "up"
		case "gauche", "GAUCHE":
			c.Left++
			name = "left"
		case "bas", "BAS":
			c.Down++
			name = "down"
		case "droite", "DROITE":
			c.Right++
			name = "right"
		case "DÉMOCRATIE", "DEMOCRATIE", "démocratie", "democratie":
			c.Demo++
			name = "democracy"
		case "ANARCHIE", "anarchie":
			c.Anar++
			name = "anarchy"
		case "start", "START":
			c.Start++
			name = "start"
		}
	}

	if name != "" {
		c.Commands++
	}
	return name
}

// Add accumulates o into c.
func (c *Counts) Add(o Counts) {
	c.Messages += o.Messages
	c.Commands += o.Commands
	c.Up += o.Up
	c.Left += o.Left
	c.Down += o.Down
	c.Right += o.Right
	c.A += o.A
	c.B += o.B
	c.X += o.X
	c.Y += o.Y
	c.Demo += o.Demo
	c.Anar += o.Anar
	c.Start += o.Start
}

// Sub removes o from c. Underflow means a bucket is being subtracted from a
// window that never contained it — broken bookkeeping, not bad input — so
// Sub panics instead of wrapping around.
func (c *Counts) Sub(o Counts) {
	c.Messages = checked(c.Messages, o.Messages)
	c.Commands = checked(c.Commands, o.Commands)
	c.Up = checked(c.Up, o.Up)
	c.Left = checked(c.Left, o.Left)
	c.Down = checked(c.Down, o.Down)
	c.Right = checked(c.Right, o.Right)
	c.A = checked(c.A, o.A)
	c.B = checked(c.B, o.B)
	c.X = checked(c.X, o.X)
	c.Y = checked(c.Y, o.Y)
	c.Demo = checked(c.Demo, o.Demo)
	c.Anar = checked(c.Anar, o.Anar)
	c.Start = checked(c.Start, o.Start)
}

func checked(a, b uint32) uint32 {
	if b > a {
		panic("tally: window sum underflow")
	}
	return a - b
}
