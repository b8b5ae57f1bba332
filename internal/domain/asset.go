package domain

import "time"

// Asset описывает ассет каталога: изображение с тройкой метаданных и вектором.
type Asset struct {
	ID              string // uuid
	ProjectID       string
	Filename        string
	FileURL         string
	Metadata        Metadata
	Tags            []string
	IsPublic        bool
	Embedding       []float32
	SimilarityScore float64 // заполняется только при поиске
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

func NewAsset(id, projectID, filename, fileURL string, metadata Metadata, tags []string, embedding []float32) *Asset {
	if tags == nil {
		tags = []string{}
	}

	return &Asset{
		ID:        id,
		ProjectID: projectID,
		Filename:  filename,
		FileURL:   fileURL,
		Metadata:  metadata.Clamp(),
		Tags:      tags,
		IsPublic:  true,
		Embedding: embedding,
	}
}
