package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageResponseText(t *testing.T) {
	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "hello "},
			{Type: "text", Text: "world"},
		},
	}
	assert.Equal(t, "hello world", resp.Text())

	empty := &MessageResponse{}
	assert.Equal(t, "", empty.Text())
}

func TestTokenUsageAdd(t *testing.T) {
	u := TokenUsage{InputTokens: 100, OutputTokens: 50}
	u.Add(TokenUsage{InputTokens: 10, OutputTokens: 5, CacheReadInputTokens: 1000})

	assert.Equal(t, int64(110), u.InputTokens)
	assert.Equal(t, int64(55), u.OutputTokens)
	assert.Equal(t, int64(1000), u.CacheReadInputTokens)
}

func TestEstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}

	assert.InDelta(t, 0.80+4.00, u.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
	assert.InDelta(t, 3.00+15.00, u.EstimateCost("claude-sonnet-4-5-20250929"), 0.001)
	assert.Equal(t, 0.0, u.EstimateCost("unknown-model"))
}

func TestEstimateCost_CacheTokens(t *testing.T) {
	// Cache writes cost 1.25x input rate, reads 0.1x.
	write := TokenUsage{CacheCreationInputTokens: 1_000_000}
	read := TokenUsage{CacheReadInputTokens: 1_000_000}

	assert.InDelta(t, 3.00*1.25, write.EstimateCost("claude-sonnet-4-5-20250929"), 0.001)
	assert.InDelta(t, 3.00*0.1, read.EstimateCost("claude-sonnet-4-5-20250929"), 0.001)
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("system prompt body")

	require.Len(t, blocks, 1)
	assert.Equal(t, "system prompt body", blocks[0].Text)
	require.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "5m", blocks[0].CacheControl.TTL)
}

func TestToSDKSystemBlocks(t *testing.T) {
	sdkBlocks := toSDKSystemBlocks(BuildCachedSystemBlocks("prompt"))

	require.Len(t, sdkBlocks, 1)
	assert.Equal(t, "prompt", sdkBlocks[0].Text)
}
