package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

func msgAt(sender string, at time.Time) models.RawMessage {
	return models.RawMessage{
		ID:          sender + "-" + at.Format("15:04:05"),
		Sender:      models.Sender{ID: sender, Name: "user " + sender},
		ContentType: models.ContentTypeText,
		Content:     "hi",
		CreatedAt:   at,
		Status:      models.StatusSent,
	}
}

func TestClassifyTimeGaps(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	t.Run("same sender within threshold stays in group", func(t *testing.T) {
		earlier := msgAt("x", base)
		later := msgAt("x", base.Add(GroupThreshold))

		flags := Classify(later, &earlier, nil, true, "me")
		assert.False(t, flags.IsFirstInGroup)
		assert.True(t, flags.IsLastInGroup)
	})

	t.Run("same sender beyond threshold starts new group", func(t *testing.T) {
		earlier := msgAt("x", base)
		later := msgAt("x", base.Add(GroupThreshold+time.Second))

		flags := Classify(later, &earlier, nil, true, "me")
		assert.True(t, flags.IsFirstInGroup)
	})

	t.Run("gap also closes the earlier message's group", func(t *testing.T) {
		earlier := msgAt("x", base)
		later := msgAt("x", base.Add(GroupThreshold+time.Second))

		flags := Classify(earlier, nil, &later, true, "me")
		assert.True(t, flags.IsLastInGroup)
	})
}

func TestClassifySenderChange(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	x := msgAt("x", base)
	y := msgAt("y", base.Add(time.Second))

	t.Run("later message starts a group", func(t *testing.T) {
		flags := Classify(y, &x, nil, true, "me")
		assert.True(t, flags.IsFirstInGroup)
	})

	t.Run("earlier message ends its group regardless of gap", func(t *testing.T) {
		flags := Classify(x, nil, &y, true, "me")
		assert.True(t, flags.IsLastInGroup)
	})
}

func TestClassifyNoNeighbors(t *testing.T) {
	t.Parallel()

	lone := msgAt("x", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	flags := Classify(lone, nil, nil, true, "me")
	assert.True(t, flags.IsFirstInGroup)
	assert.True(t, flags.IsLastInGroup)
	assert.True(t, flags.ShowAvatar)
	assert.True(t, flags.ShowSenderName)
}

func TestClassifySenderChrome(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	first := msgAt("x", base)
	middle := msgAt("x", base.Add(time.Minute))
	tail := msgAt("x", base.Add(2*time.Minute))

	t.Run("avatar anchors the tail of a run", func(t *testing.T) {
		flags := Classify(tail, &middle, nil, true, "me")
		assert.True(t, flags.ShowAvatar)
		assert.False(t, flags.ShowSenderName)
	})

	t.Run("name anchors the head of a run", func(t *testing.T) {
		flags := Classify(first, nil, &middle, true, "me")
		assert.True(t, flags.ShowSenderName)
		assert.False(t, flags.ShowAvatar)
	})

	t.Run("middle of a run shows neither", func(t *testing.T) {
		flags := Classify(middle, &first, &tail, true, "me")
		assert.False(t, flags.ShowAvatar)
		assert.False(t, flags.ShowSenderName)
	})

	t.Run("own messages never show chrome", func(t *testing.T) {
		flags := Classify(tail, &middle, nil, true, "x")
		assert.False(t, flags.ShowAvatar)
		assert.False(t, flags.ShowSenderName)
	})

	t.Run("private chats never show chrome", func(t *testing.T) {
		flags := Classify(tail, &middle, nil, false, "me")
		assert.False(t, flags.ShowAvatar)
		assert.False(t, flags.ShowSenderName)
	})
}

// Grouping must not depend on walk direction: reversing a collection
// and swapping neighbor roles yields mirrored flags.
func TestClassifyDirectionInsensitive(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	msgs := []models.RawMessage{
		msgAt("x", base),
		msgAt("x", base.Add(time.Minute)),
		msgAt("y", base.Add(2*time.Minute)),
		msgAt("y", base.Add(20*time.Minute)),
	}

	neighbor := func(i int) *models.RawMessage {
		if i < 0 || i >= len(msgs) {
			return nil
		}
		return &msgs[i]
	}

	// A boundary seen from either side agrees: the later message starts
	// a group exactly when the earlier one ends its own.
	for i := 0; i < len(msgs)-1; i++ {
		earlier := Classify(msgs[i], neighbor(i-1), neighbor(i+1), true, "me")
		later := Classify(msgs[i+1], neighbor(i), neighbor(i+2), true, "me")
		assert.Equal(t, earlier.IsLastInGroup, later.IsFirstInGroup, "boundary %d-%d", i, i+1)
	}

	// Spot-check the expected clusters: [x,x] [y] [y].
	assert.True(t, Classify(msgs[0], nil, neighbor(1), true, "me").IsFirstInGroup)
	assert.False(t, Classify(msgs[1], neighbor(0), neighbor(2), true, "me").IsFirstInGroup)
	assert.True(t, Classify(msgs[2], neighbor(1), neighbor(3), true, "me").IsFirstInGroup)
	assert.True(t, Classify(msgs[3], neighbor(2), nil, true, "me").IsFirstInGroup)
}
