package models

import "time"

// Analysis is the AI-generated part of a check-in
type Analysis struct {
	Insight        string   `json:"insight"`
	Action         string   `json:"acao"`
	SentimentLabel string   `json:"sentimento_texto"`
	Themes         []string `json:"temas"`
	Summary        string   `json:"resumo"`
}

// CheckinRecord is one submitted wellness entry plus its analysis.
// It maps to exactly one row of the Checkins table.
type CheckinRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	Area           string    `json:"area"`
	SentimentScore int       `json:"sentiment_score"`
	Topics         []string  `json:"topics"`
	Journal        string    `json:"journal"`
	Analysis       Analysis  `json:"analysis"`
	PatientID      string    `json:"patient_id"`
	CounselorID    string    `json:"counselor_id,omitempty"`
	Shared         bool      `json:"shared"`
}
