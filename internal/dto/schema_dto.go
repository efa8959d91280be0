package dto

// IndexSchemaRequest submits one table-schema document for indexing. The
// document text should combine column names, types, descriptions,
// relationships and sample query patterns for the table.
type IndexSchemaRequest struct {
	TableName string                 `json:"table_name" validate:"required,min=1,max=256"`
	Document  string                 `json:"document" validate:"required,min=1"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type IndexSchemaResponse struct {
	TableName string `json:"table_name"`
	Queued    bool   `json:"queued"`
}

type SchemaCountResponse struct {
	Count int64 `json:"count"`
}
