package core

import "time"

const (
	AppName       = "VidQuery"
	AppUserAgent  = "VidQuery/0.1"
	RepositoryURL = "https://github.com/sandevgo/vidquery"
	AppVersion    = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// QueryIntent is the classified category of a user question. It drives which
// resolution strategy runs and is never persisted.
type QueryIntent string

const (
	IntentListChannels         QueryIntent = "list_channels"
	IntentGetTranscript        QueryIntent = "get_transcript"
	IntentGetSummary           QueryIntent = "get_summary"
	IntentCheckChannelExists   QueryIntent = "check_channel_exists"
	IntentRecentChannelInfo    QueryIntent = "recent_channel_info"
	IntentRecentVideoInfo      QueryIntent = "recent_video_info"
	IntentGenericSearch        QueryIntent = "generic_search"
	IntentRequiresExternalInfo QueryIntent = "requires_external_info"
)

// Reference points at supporting material for an answer. It has no identity
// beyond its fields.
type Reference struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
	Date    string `json:"date,omitempty"`
}

type SourceKind string

const (
	SourceDatabase         SourceKind = "database"
	SourceDatabaseFallback SourceKind = "database_fallback"
	SourceWeb              SourceKind = "web"
	SourceHybrid           SourceKind = "hybrid"
	SourceNone             SourceKind = "none"
	SourceError            SourceKind = "error"
)

// Source attributes an answer to the internal store, an external provider,
// a mix of both, or neither.
type Source struct {
	Kind     SourceKind `json:"kind"`
	Provider string     `json:"provider,omitempty"`
}

func DatabaseSource() Source { return Source{Kind: SourceDatabase} }
func NoneSource() Source     { return Source{Kind: SourceNone} }
func ErrorSource() Source    { return Source{Kind: SourceError} }

func WebSource(provider string) Source {
	return Source{Kind: SourceWeb, Provider: provider}
}

func (s Source) String() string {
	if s.Kind == SourceWeb && s.Provider != "" {
		return string(SourceWeb) + ":" + s.Provider
	}
	if s.Kind == "" {
		return string(SourceNone)
	}
	return string(s.Kind)
}

// Answer is the final product of the resolution pipeline. Confidence is a
// heuristic 0..1 routing score, not a calibrated probability.
type Answer struct {
	Text       string      `json:"text"`
	References []Reference `json:"references"`
	Source     Source      `json:"source"`
	Confidence float64     `json:"confidence"`
}

// ChatMessage is immutable once appended to a conversation. Assistant
// messages carry the answer attribution; user messages only the content.
type ChatMessage struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	Timestamp  time.Time   `json:"timestamp"`
	References []Reference `json:"references,omitempty"`
	Source     string      `json:"source,omitempty"`
	Confidence *float64    `json:"confidence,omitempty"`
}

// Conversation is the persisted transcript of a single chat session.
// Messages are strictly append-ordered; records are never deleted here.
type Conversation struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
}

// Video is one ingested corpus record.
type Video struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	ChannelName string    `json:"channel_name"`
	Link        string    `json:"link"`
	Date        time.Time `json:"date"`
	Summary     string    `json:"summary"`
	Transcript  string    `json:"transcript"`
	Embedding   []float32 `json:"-"`
}

// ScoredVideo is a similarity-search hit. Score is cosine similarity in [−1, 1].
type ScoredVideo struct {
	Video
	Score float64 `json:"score"`
}
