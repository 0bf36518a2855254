package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixColumns_QualifiesEachField(t *testing.T) {
	got := prefixColumns("dv", "video_id, channel_id,  title")
	assert.Equal(t, "dv.video_id, dv.channel_id, dv.title", got)
}

func TestPrefixColumns_SingleColumn(t *testing.T) {
	got := prefixColumns("s", "video_id")
	assert.Equal(t, "s.video_id", got)
}
