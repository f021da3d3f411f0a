package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportTimeFormat is the layout used for report identifiers and filenames.
const ReportTimeFormat = "20060102_150405"

// NewUUID generates a new UUID string
func NewUUID() string {
	return uuid.New().String()
}

// ReportID derives the stable timestamp identifier for a report generated at t.
func ReportID(t time.Time) string {
	return t.Format(ReportTimeFormat)
}
