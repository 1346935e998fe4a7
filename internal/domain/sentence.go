package domain

// SentenceRecord is the explanation of one input sentence.
// It is created once, after the reply for that sentence was parsed, and is
// never modified afterwards.
type SentenceRecord struct {
	English           string `json:"english" yaml:"english"`
	DirectTranslation string `json:"direct_translation" yaml:"direct_translation"`
	SimpleExplanation string `json:"simple_explanation" yaml:"simple_explanation"`
}
