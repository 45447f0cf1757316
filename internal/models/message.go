package models

import "time"

// Message is a note ("recado") left by a counselor for a patient
type Message struct {
	Timestamp   time.Time `json:"timestamp"`
	CounselorID string    `json:"counselor_id"`
	PatientID   string    `json:"patient_id"`
	Text        string    `json:"text"`
}
