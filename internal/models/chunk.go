package models

// Chunk is a slice of document text stored in the retrieval index.
type Chunk struct {
	ID       string  `json:"id"`
	FileID   string  `json:"fileId"`
	Filename string  `json:"filename"`
	Seq      int     `json:"seq"`
	Text     string  `json:"text"`
	Score    float64 `json:"score,omitempty"`
}

// Answer is the backend reply to one chat question.
type Answer struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}
