package links

import "time"

// Link remembers which registration hash a chat user linked with. It is
// advisory: the map website stays authoritative.
type Link struct {
	TelegramID int64
	Hash       string
	UpdatedAt  time.Time
}
