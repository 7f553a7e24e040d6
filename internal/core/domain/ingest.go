package domain

// UpsertReport summarizes a best-effort bulk load into the vector index.
type UpsertReport struct {
	Batches       int `json:"batches"`
	FailedBatches int `json:"failed_batches"`
	Upserted      int `json:"upserted"`
	Failed        int `json:"failed"`
}

type IngestReport struct {
	Dir           string `json:"dir"`
	Files         int    `json:"files"`
	Skipped       int    `json:"skipped"`
	Chunks        int    `json:"chunks"`
	Embedded      int    `json:"embedded"`
	EmbedFailures int    `json:"embed_failures"`
	Upserted      int    `json:"upserted"`
	FailedBatches int    `json:"failed_batches"`
}
