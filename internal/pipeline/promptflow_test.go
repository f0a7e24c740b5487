package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaignflow/internal/domain"
)

func TestRunPromptFlowParksWithoutSeedImage(t *testing.T) {
	runner, _ := testRunner(happyGenerator())
	sink := &recordingSink{}

	result, err := runner.RunPromptFlow(context.Background(), PromptFlowRequest{Brief: testBrief()}, sink)
	require.NoError(t, err)

	assert.True(t, result.Waiting)
	assert.NotEmpty(t, result.ImagePrompt)
	assert.Empty(t, result.VideoPrompt)

	// The stream must stop exactly at the waiting frame; nothing after it.
	assert.Equal(t, []string{
		"image-prompt/generating",
		"image-prompt/complete",
		"image-generation/waiting",
	}, sink.steps())
}

func TestRunPromptFlowFullSequenceWithSeedImage(t *testing.T) {
	runner, _ := testRunner(happyGenerator())
	sink := &recordingSink{}

	result, err := runner.RunPromptFlow(context.Background(), PromptFlowRequest{
		Brief:    testBrief(),
		ImageURL: "https://cdn.test/seed.jpg",
	}, sink)
	require.NoError(t, err)

	assert.False(t, result.Waiting)
	assert.Equal(t, "a vertical opening frame", result.ImagePrompt)
	assert.Equal(t, "a sweeping vertical video", result.VideoPrompt)
	assert.Equal(t, "https://cdn.test/seed.jpg", result.ImageURL)

	assert.Equal(t, []string{
		"image-prompt/generating",
		"image-prompt/complete",
		"image-url/received",
		"video-prompt/generating",
		"video-prompt/complete",
		"workflow/complete",
	}, sink.steps())
}

func TestRunPromptFlowFatalOnImagePromptFailure(t *testing.T) {
	gen := happyGenerator()
	gen.imagePrompt = func() (string, error) { return "", errors.New("model offline") }
	runner, _ := testRunner(gen)
	sink := &recordingSink{}

	_, err := runner.RunPromptFlow(context.Background(), PromptFlowRequest{Brief: testBrief()}, sink)
	require.Error(t, err)

	steps := sink.steps()
	assert.Equal(t, "error/failed", steps[len(steps)-1])
}

func TestRunPromptFlowFatalOnVideoPromptFailure(t *testing.T) {
	gen := happyGenerator()
	gen.videoPrompt = func() (string, error) { return "", errors.New("model offline") }
	runner, _ := testRunner(gen)
	sink := &recordingSink{}

	_, err := runner.RunPromptFlow(context.Background(), PromptFlowRequest{
		Brief:    testBrief(),
		ImageURL: "https://cdn.test/seed.jpg",
	}, sink)
	require.Error(t, err)

	steps := sink.steps()
	assert.Contains(t, steps, "image-url/received")
	assert.Equal(t, "error/failed", steps[len(steps)-1])
}

func TestRunPromptFlowRejectsEmptyBrief(t *testing.T) {
	runner, _ := testRunner(happyGenerator())
	sink := &recordingSink{}

	_, err := runner.RunPromptFlow(context.Background(), PromptFlowRequest{}, sink)
	require.ErrorIs(t, err, domain.ErrEmptyBrief)
	assert.Equal(t, []string{"error/failed"}, sink.steps())
}
