package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/vidquery/internal/core"
)

func TestConversationRoundTrip(t *testing.T) {
	_, convs := testRepos(t)
	ctx := context.Background()

	conf := 0.75
	want := core.Conversation{
		ID:        "conv-1",
		Title:     "what are the channels",
		CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Messages: []core.ChatMessage{
			{
				Role:      core.RoleUser,
				Content:   "what are the channels",
				Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			},
			{
				Role:       core.RoleAssistant,
				Content:    "Alpha and Beta.",
				Timestamp:  time.Date(2026, 8, 30, 12, 0, 1, 0, time.UTC),
				References: []core.Reference{{Title: "ref", Link: "https://example.com"}},
				Source:     "web:perplexity",
				Confidence: &conf,
			},
		},
	}

	require.NoError(t, convs.Upsert(ctx, want))

	got, err := convs.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, want.Messages[0].Role, got.Messages[0].Role)
	assert.Equal(t, want.Messages[0].Content, got.Messages[0].Content)
	assert.Equal(t, want.Messages[1].Content, got.Messages[1].Content)
	assert.Equal(t, want.Messages[1].Source, got.Messages[1].Source)
	require.NotNil(t, got.Messages[1].Confidence)
	assert.Equal(t, conf, *got.Messages[1].Confidence)
	assert.True(t, want.Messages[1].Timestamp.Equal(got.Messages[1].Timestamp))
}

func TestConversationGetAbsentReturnsNil(t *testing.T) {
	_, convs := testRepos(t)

	got, err := convs.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConversationUpsertReplacesMessagesKeepsTitle(t *testing.T) {
	_, convs := testRepos(t)
	ctx := context.Background()

	first := core.Conversation{
		ID:        "conv-1",
		Title:     "original title",
		CreatedAt: time.Now().UTC(),
		Messages:  []core.ChatMessage{{Role: core.RoleUser, Content: "one"}},
	}
	require.NoError(t, convs.Upsert(ctx, first))

	second := first
	second.Title = "should be ignored"
	second.Messages = append(second.Messages, core.ChatMessage{Role: core.RoleAssistant, Content: "two"})
	require.NoError(t, convs.Upsert(ctx, second))

	got, err := convs.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "original title", got.Title)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "two", got.Messages[1].Content)
}
