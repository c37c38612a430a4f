package app

// Passage is one ranked span of the final article text.
type Passage struct {
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// RankingInfo describes how the relevance ordering was produced. Warning is
// set when the semantic strategy was skipped or failed.
type RankingInfo struct {
	Method  string `json:"method"`
	Model   string `json:"model,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// ExtractionResult is the single output record of one extraction request. It
// is immutable once composed; persistence and rendering happen outside the
// pipeline.
type ExtractionResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	SourceType       string `json:"sourceType,omitempty"`
	Source           string `json:"source,omitempty"`
	NormalizedSource string `json:"normalizedSource,omitempty"`

	Title   string `json:"title"`
	Byline  string `json:"byline"`
	Excerpt string `json:"excerpt"`

	ArticleText        string    `json:"articleText"`
	ParagraphCount     int       `json:"paragraphCount"`
	RelevantPassages   []Passage `json:"relevantPassages"`
	CandidatesAnalyzed int       `json:"candidatesAnalyzed,omitempty"`

	Blocked bool   `json:"blocked,omitempty"`
	Warning string `json:"warning,omitempty"`

	Ranking RankingInfo `json:"ranking"`
}
