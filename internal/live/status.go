package live

// Status is the JSON snapshot of the bot's state after a window rotation.
// Rates and ratios are computed over the short (decision) window.
type Status struct {
	Timestamp string `json:"timestamp"`
	Connected bool   `json:"connected"`
	Channel   string `json:"channel"`

	Label          string  `json:"label"`
	MessagesPerSec float64 `json:"messages_per_sec"`
	CommandsPerSec float64 `json:"commands_per_sec"`
	CommandRatio   float64 `json:"command_ratio"`
	RemainingSec   float64 `json:"remaining_sec"`
	Eligible       bool    `json:"eligible"`

	Messages uint32            `json:"messages"`
	Commands uint32            `json:"commands"`
	Votes    map[string]uint32 `json:"votes"`
	Sends    int               `json:"sends"`
}
