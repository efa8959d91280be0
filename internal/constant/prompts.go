package constant

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"

	// UnanswerableSentinel is the reserved token the model must emit verbatim
	// when no valid SELECT can be formed from the supplied schema context.
	UnanswerableSentinel = "UNANSWERABLE"

	// SchemaDocSeparator joins retrieved table documents into one context block.
	SchemaDocSeparator = "\n\n---\n\n"
)

// RewriteQuestionPromptV1 collapses a follow-up plus history into one
// standalone question. %s slots: transcript, follow-up question.
const RewriteQuestionPromptV1 = `Rewrite the follow-up question below into a single standalone question that can be understood without the conversation.

Rules:
- Resolve pronouns and references ("it", "them", "that table") against the conversation.
- Keep the user's intent exactly; never add new conditions.
- Output ONLY the rewritten question. No explanation, no quotes.

Conversation:
%s

Follow-up question: %s

Standalone question:`

// GenerateSqlSystemPromptV1 is the fixed instruction for SQL generation.
// %s slots: schema context, question.
const GenerateSqlSystemPromptV1 = `You are a SQL generator for a read-only reporting database.

Database schema:
%s

Rules:
1. Output exactly ONE SQL SELECT statement and nothing else.
2. Always schema-qualify table names (e.g. dbo.Employees), matching the case used in the schema above EXACTLY.
3. Use TOP (N) syntax to bound result size. Never use LIMIT.
4. Never generate INSERT, UPDATE, DELETE, DROP, ALTER, CREATE, TRUNCATE or EXEC.
5. No comments, no code fences, no explanation.
6. If the question cannot be answered from the schema above, respond with exactly: ` + UnanswerableSentinel + `

Question: %s

SQL:`

// SummarizeResultPromptV1 turns tabular results into prose.
// %s slots: question, data block, coverage note.
const SummarizeResultPromptV1 = `Answer the user's question in plain prose using ONLY the query results below.

Question: %s

Query results (JSON rows):
%s
%s
Rules:
- Answer directly in 1-3 sentences.
- Use only values present in the results; never invent numbers.
- If the results are a partial preview, say the answer is based on a sample.

Answer:`

// SummarizePartialNoteV1 is injected when the rows shown are a preview.
// %d slots: rows shown, total rows.
const SummarizePartialNoteV1 = "Note: showing %d of %d total rows. This is a partial preview, not the complete result.\n"
