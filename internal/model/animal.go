package model

import "time"

// Enclosure represents a terrarium or vivarium registered by the owner
type Enclosure struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Animal represents an individual animal housed in an enclosure
type Animal struct {
	ID          string     `json:"id"`
	EnclosureID string     `json:"enclosure_id,omitempty"`
	Name        string     `json:"name"`
	Species     string     `json:"species,omitempty"`
	Morph       string     `json:"morph,omitempty"`
	Sex         string     `json:"sex,omitempty"`
	HatchDate   *time.Time `json:"hatch_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// WeightEntry records an animal's weight at a point in time
type WeightEntry struct {
	ID         string    `json:"id"`
	AnimalID   string    `json:"animal_id"`
	Grams      float64   `json:"grams"`
	MeasuredAt time.Time `json:"measured_at"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// LengthEntry records an animal's length at a point in time
type LengthEntry struct {
	ID          string    `json:"id"`
	AnimalID    string    `json:"animal_id"`
	Centimeters float64   `json:"centimeters"`
	MeasuredAt  time.Time `json:"measured_at"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShedRecord records a shed cycle observation
type ShedRecord struct {
	ID        string    `json:"id"`
	AnimalID  string    `json:"animal_id"`
	ShedAt    time.Time `json:"shed_at"`
	Complete  bool      `json:"complete"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VetVisit records a veterinary appointment
type VetVisit struct {
	ID        string    `json:"id"`
	AnimalID  string    `json:"animal_id"`
	VisitedAt time.Time `json:"visited_at"`
	Reason    string    `json:"reason,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BrumationCycle records a brumation period; EndedAt is nil while ongoing
type BrumationCycle struct {
	ID        string     `json:"id"`
	AnimalID  string     `json:"animal_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
