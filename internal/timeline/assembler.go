package timeline

import (
	"time"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

// BuildTimeline walks a newest-first message collection once and
// produces the interleaved sequence of display messages and day
// separators consumed by an inverted list.
//
// Every input message yields exactly one DisplayMessage in input order.
// Whenever a message's calendar day differs from that of its next-older
// neighbor, a DaySeparator follows its DisplayMessage, so the separator
// renders above the older day's run. Input is never re-sorted:
// out-of-order timestamps pass through as given.
func BuildTimeline(msgs []models.RawMessage, ctx ConversationContext, now time.Time) []Item {
	if len(msgs) == 0 {
		return []Item{}
	}

	items := make([]Item, 0, len(msgs)+4)
	for i := range msgs {
		// Newest-first: the next index holds the chronologically
		// earlier neighbor.
		var predecessor, successor *models.RawMessage
		if i+1 < len(msgs) {
			predecessor = &msgs[i+1]
		}
		if i > 0 {
			successor = &msgs[i-1]
		}

		items = append(items, MapMessage(msgs[i], predecessor, successor, ctx))

		if predecessor != nil && !sameDay(msgs[i].CreatedAt, predecessor.CreatedAt) {
			items = append(items, DaySeparator{
				Date:  msgs[i].CreatedAt,
				Label: FormatDaySeparator(msgs[i].CreatedAt, now),
			})
		}
	}
	return items
}
