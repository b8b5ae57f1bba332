package domain

import "time"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding — вектор ассета вместе с payload для индекса Qdrant.
type Embedding struct {
	ID      string
	Vector  []float32
	Payload Payload
}

func NewEmbedding(id string, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// NewAssetEmbedding строит точку индекса по ассету: id точки совпадает с id ассета.
func NewAssetEmbedding(asset *Asset) *Embedding {
	return NewEmbedding(asset.ID, asset.Embedding, NewAssetPayload(asset))
}

func NewAssetPayload(asset *Asset) Payload {
	createdAt := asset.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tags := make([]any, 0, len(asset.Tags))
	for _, t := range asset.Tags {
		tags = append(tags, t)
	}

	return Payload{
		"asset_id":      asset.ID,
		"project_id":    asset.ProjectID,
		"filename":      asset.Filename,
		"file_url":      asset.FileURL,
		"keywords":      asset.Metadata.Keywords,
		"emotion":       asset.Metadata.Emotion,
		"look_and_feel": asset.Metadata.LookAndFeel,
		"tags":          tags,
		"is_public":     asset.IsPublic,
		"created_at":    createdAt.UnixNano(),
	}
}
