package timeline

import (
	"time"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

// GroupThreshold is the maximum gap between two messages from the same
// sender for them to stay in one visual cluster. A longer pause starts
// a new cluster even for the same sender.
const GroupThreshold = 5 * time.Minute

// GroupFlags are the grouping decorations of a single message relative
// to its chronological neighbors.
type GroupFlags struct {
	ShowAvatar     bool
	ShowSenderName bool
	IsFirstInGroup bool
	IsLastInGroup  bool
}

// Classify computes grouping flags for msg given its chronologically
// earlier neighbor (predecessor) and later neighbor (successor), either
// of which may be nil at the edges of the collection.
//
// The result depends only on pairwise sender identity and time gaps, so
// walking the same collection in either direction yields the same
// clusters: IsFirstInGroup looks backward, IsLastInGroup forward.
func Classify(msg models.RawMessage, predecessor, successor *models.RawMessage, isGroupChat bool, currentUserID string) GroupFlags {
	isMine := msg.Sender.ID == currentUserID

	flags := GroupFlags{
		IsFirstInGroup: predecessor == nil ||
			predecessor.Sender.ID != msg.Sender.ID ||
			gap(predecessor.CreatedAt, msg.CreatedAt) > GroupThreshold,
		IsLastInGroup: successor == nil ||
			successor.Sender.ID != msg.Sender.ID ||
			gap(msg.CreatedAt, successor.CreatedAt) > GroupThreshold,
	}

	// Sender chrome only exists in group chats and never on own
	// messages. The avatar anchors the bottom of a sender's run, the
	// name its top; neither cares about time gaps.
	if isGroupChat && !isMine {
		flags.ShowAvatar = successor == nil || successor.Sender.ID != msg.Sender.ID
		flags.ShowSenderName = predecessor == nil || predecessor.Sender.ID != msg.Sender.ID
	}

	return flags
}

// gap is direction-insensitive: out-of-order timestamps are treated as
// given rather than reordered.
func gap(a, b time.Time) time.Duration {
	d := b.Sub(a)
	if d < 0 {
		return -d
	}
	return d
}
