package dto

// AskRequest is the single question-answering entrypoint payload.
type AskRequest struct {
	Question  string `json:"question" validate:"required,min=1"`
	SessionId string `json:"session_id,omitempty" validate:"omitempty,uuid4"`
}

// StageTimings reports wall-clock milliseconds spent per pipeline stage.
type StageTimings struct {
	RewriteMs   int64 `json:"rewrite_ms"`
	RetrievalMs int64 `json:"retrieval_ms"`
	SqlGenMs    int64 `json:"sqlgen_ms"`
	ExecuteMs   int64 `json:"execute_ms"`
	SummaryMs   int64 `json:"summary_ms"`
	TotalMs     int64 `json:"total_ms"`
}

// AskResponse is assembled once per request and immutable after construction.
type AskResponse struct {
	Answer       string                   `json:"answer"`
	GeneratedSql string                   `json:"generated_sql"`
	RawData      []map[string]interface{} `json:"raw_data"`
	SessionId    string                   `json:"session_id"`
	Cached       bool                     `json:"cached"`
	Degraded     bool                     `json:"degraded,omitempty"`
	Timings      StageTimings             `json:"timings"`
}
