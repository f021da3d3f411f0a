package models

// Prediction is the classifier output for one feature vector.
type Prediction struct {
	ClassID int    `json:"class_id"`
	Class   string `json:"class"`
}
