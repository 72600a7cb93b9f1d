package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineTracker(t *testing.T) {
	var buf bytes.Buffer
	tr := NewLines(&buf, 2)
	tr.Record(8208, nil)
	tr.Record(8210, errors.New("boom"))
	sum := tr.Finish()

	assert.Equal(t, "Generating static content for 2 pages\n[1/2] page 8208\n[2/2] page 8210 failed\nStatic content generation complete\n", buf.String())
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Succeeded)
	if assert.Len(t, sum.Failures, 1) {
		assert.Equal(t, int64(8210), sum.Failures[0].PageID)
	}
}

func TestNewUsesLinesInCI(t *testing.T) {
	t.Setenv("CI", "true")
	var buf bytes.Buffer
	tr := New(&buf, 1)
	assert.Nil(t, tr.bar)
	assert.Contains(t, buf.String(), "for 1 pages")
}

func TestBarTrackerWritesToOut(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	var buf bytes.Buffer
	tr := New(&buf, 3)
	tr.Record(1, nil)
	sum := tr.Finish()
	assert.NotEmpty(t, buf.String())
	assert.Equal(t, 1, sum.Succeeded)
}
