// Package ingest loads transcript export files into the video store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sandevgo/vidquery/internal/core"
	"github.com/sandevgo/vidquery/pkg/log"
)

const encodingName = "cl100k_base"

type Ingester struct {
	videos      core.VideoRepository
	embedder    core.Embedder
	tokenBudget int
	encoder     *tiktoken.Tiktoken
}

func New(videos core.VideoRepository, embedder core.Embedder, tokenBudget int) (*Ingester, error) {
	encoder, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &Ingester{
		videos:      videos,
		embedder:    embedder,
		tokenBudget: tokenBudget,
		encoder:     encoder,
	}, nil
}

// fileRecord is the export format produced by the transcript fetcher: one
// JSON document per video.
type fileRecord struct {
	Title       string `json:"title"`
	ChannelName string `json:"channelName"`
	Link        string `json:"link"`
	Date        string `json:"date"`
	Summary     string `json:"summary"`
	Transcript  string `json:"transcript"`
}

// IngestDir loads every *.json file under dir. A bad file is logged and
// skipped so one malformed export cannot abort a whole batch.
func (i *Ingester) IngestDir(ctx context.Context, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no json files found in %s", dir)
	}

	logger := log.FromCtx(ctx)
	ingested := 0
	for _, path := range paths {
		if err := i.ingestFile(ctx, path); err != nil {
			logger.Error().Err(err).Str("file", path).Msg("skipping file")
			continue
		}
		ingested++
		logger.Info().Str("file", path).Msg("ingested")
	}
	return ingested, nil
}

func (i *Ingester) ingestFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read: %w", err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}
	if rec.Title == "" || rec.ChannelName == "" {
		return fmt.Errorf("missing title or channelName")
	}

	video := core.Video{
		Title:       rec.Title,
		ChannelName: rec.ChannelName,
		Link:        rec.Link,
		Summary:     rec.Summary,
		Transcript:  i.TruncateTokens(rec.Transcript),
	}
	if rec.Date != "" {
		date, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			return fmt.Errorf("failed to parse date %q: %w", rec.Date, err)
		}
		video.Date = date
	}

	if i.embedder != nil {
		embedding, err := i.embedder.Embed(ctx, rec.Title+"\n"+rec.Summary)
		if err != nil {
			return fmt.Errorf("failed to embed: %w", err)
		}
		video.Embedding = embedding
	}

	if err := i.videos.Insert(ctx, video); err != nil {
		return fmt.Errorf("failed to store: %w", err)
	}
	return nil
}

// TruncateTokens cuts text to the configured token budget on an exact token
// boundary, so what is stored is what fits in a model prompt later.
func (i *Ingester) TruncateTokens(text string) string {
	if i.tokenBudget <= 0 || text == "" {
		return text
	}
	tokens := i.encoder.Encode(text, nil, nil)
	if len(tokens) <= i.tokenBudget {
		return text
	}
	return i.encoder.Decode(tokens[:i.tokenBudget])
}
