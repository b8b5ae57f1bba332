package domain

import "time"

// Project описывает проект с брифом и тройкой метаданных.
type Project struct {
	ID        string // uuid
	Name      string
	Brief     string
	Metadata  Metadata
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func NewProject(id, name, brief string, metadata Metadata, embedding []float32) *Project {
	return &Project{
		ID:        id,
		Name:      name,
		Brief:     brief,
		Metadata:  metadata.Clamp(),
		Embedding: embedding,
	}
}
