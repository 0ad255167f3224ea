package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSectionInfo_CollectsHeadersInOrder(t *testing.T) {
	info := ExtractSectionInfo("# Top\nsome text\n## Nested\nmore text\n### Deep\nend")

	assert.Equal(t, "# Top; ## Nested; ### Deep", info.Headers)
}

func TestExtractSectionInfo_NoHeaders(t *testing.T) {
	info := ExtractSectionInfo("plain text only")

	assert.Empty(t, info.Headers)
	assert.Equal(t, 15, info.CharCount)
	assert.Equal(t, 3, info.WordCount)
}

func TestExtractSectionInfo_CountsRunesNotBytes(t *testing.T) {
	info := ExtractSectionInfo("héllo wörld")

	assert.Equal(t, 11, info.CharCount)
	assert.Equal(t, 2, info.WordCount)
}

func TestExtractSectionInfo_EmptyChunk(t *testing.T) {
	info := ExtractSectionInfo("")

	assert.Empty(t, info.Headers)
	assert.Zero(t, info.CharCount)
	assert.Zero(t, info.WordCount)
}
