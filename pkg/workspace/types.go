package workspace

import "time"

// Document is an uploaded file indexed for retrieval.
type Document struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes,omitempty"`
	ChunkCount  int       `json:"chunk_count,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Source is a retrieved passage that grounded an answer.
type Source struct {
	DocumentID int64   `json:"document_id"`
	Filename   string  `json:"filename"`
	Content    string  `json:"content"`
	Score      float64 `json:"score,omitempty"`
}

// ChatRequest asks a question, optionally restricted to some documents and
// continuing an earlier conversation.
type ChatRequest struct {
	Question       string  `json:"question"`
	DocumentIDs    []int64 `json:"document_ids,omitempty"`
	ConversationID string  `json:"conversation_id,omitempty"`
}

// ChatAnswer is a streamed answer assembled from its events.
type ChatAnswer struct {
	Answer         string
	Sources        []Source
	ConversationID string
}

// SQLRequest asks for SQL for a question, executing it when Execute is set.
type SQLRequest struct {
	Question string `json:"question"`
	Execute  bool   `json:"execute"`
}

// SQLResult is the generated statement and, when executed, its rows.
type SQLResult struct {
	SQL     string   `json:"sql"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`
}

// ResumeScore grades a resume against a job description.
type ResumeScore struct {
	Score     float64  `json:"score"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
	Summary   string   `json:"summary"`
}

// ResumeRequest drafts a resume from a candidate profile for a job.
type ResumeRequest struct {
	Profile        string `json:"profile"`
	JobDescription string `json:"job_description"`
}
