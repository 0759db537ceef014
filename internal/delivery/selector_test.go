package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectStrategy(t *testing.T) {
	const threshold = 120

	assert.Equal(t, StrategyStream, SelectStrategy(0, threshold))
	assert.Equal(t, StrategyStream, SelectStrategy(1, threshold))
	assert.Equal(t, StrategyStream, SelectStrategy(119, threshold))
	assert.Equal(t, StrategyStream, SelectStrategy(120, threshold), "boundary is inclusive")
	assert.Equal(t, StrategyDownload, SelectStrategy(121, threshold))
	assert.Equal(t, StrategyDownload, SelectStrategy(3600, threshold))
}

func TestSelectStrategyWholeRange(t *testing.T) {
	const threshold = 120
	for d := 0; d <= 300; d++ {
		want := StrategyDownload
		if d <= threshold {
			want = StrategyStream
		}
		assert.Equal(t, want, SelectStrategy(d, threshold), "duration %d", d)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:07", FormatDuration(7))
	assert.Equal(t, "2:00", FormatDuration(120))
	assert.Equal(t, "2:05", FormatDuration(125))
	assert.Equal(t, "61:01", FormatDuration(3661))
}

func TestCaption(t *testing.T) {
	m := &fakeMedia{id: "abc123", title: "Some Clip", duration: 125}

	assert.Equal(t, "Some Clip\nyoutu.be/abc123 2:05", Caption(m, 0))
	assert.Equal(t, "Some Clip\nyoutu.be/abc123 2:05 47.0MB", Caption(m, 47<<20))
	assert.Equal(t, "Some Clip\nyoutu.be/abc123 2:05 1.5MB", Caption(m, 3<<19))
}
