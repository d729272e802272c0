package common

const (
	RedisStreamDocumentIngest = "analyst.document.ingest"
	RedisStreamNoteRetry      = "analyst.note.retry"

	RedisStreamGroup    = "analyst-group"
	RedisStreamConsumer = "analyst-consumer"
)
