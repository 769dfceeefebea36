package domain

import "time"

// HealthProfile is the read-only profile record this core projects from.
// Every field is optional; persistence of profiles belongs to an external
// store, not to this service.
type HealthProfile struct {
	UserID                UserID
	Name                  string
	DateOfBirth           *time.Time
	Gender                string
	ChronicConditions     []string
	CurrentMedications    []string
	EmergencyContactPhone string
}

// ClinicalContext is the structured snapshot handed to the analysis
// collaborator with each turn. It is derived, never mutated in place.
type ClinicalContext struct {
	Age                *int     `json:"age,omitempty"`
	Gender             string   `json:"gender,omitempty"`
	MedicalHistory     []string `json:"medicalHistory"`
	CurrentMedications []string `json:"currentMedications"`
	Location           string   `json:"location,omitempty"`
}
