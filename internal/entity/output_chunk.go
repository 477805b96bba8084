package entity

// OutputChunk is one unit of streamed output. IsError marks compiler
// diagnostics, failure summaries and stderr-origin text.
type OutputChunk struct {
	Text    string `json:"output"`
	IsError bool   `json:"is_error"`
}
