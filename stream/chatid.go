package stream

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewChatID returns an id of the form chat_<unix-millis>_<9 base36 chars>.
// It is unique enough for chat sessions but not cryptographically random.
func NewChatID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return "chat_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + string(suffix)
}
