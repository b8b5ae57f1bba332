package converter

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// ProjectModel представляет запись таблицы projects в PostgreSQL.
type ProjectModel struct {
	ID               string           `db:"id"`
	Name             string           `db:"name"`
	Brief            string           `db:"brief"`
	Keywords         string           `db:"keywords"`
	Emotion          string           `db:"emotion"`
	LookAndFeel      string           `db:"look_and_feel"`
	CombinedMetadata string           `db:"combined_metadata"`
	CombinedVector   *pgvector.Vector `db:"combined_vector"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        *time.Time       `db:"updated_at"`
}

// AssetModel представляет запись таблицы assets в PostgreSQL.
type AssetModel struct {
	ID               string           `db:"id"`
	ProjectID        string           `db:"project_id"`
	Filename         string           `db:"filename"`
	FileURL          string           `db:"file_url"`
	Keywords         string           `db:"keywords"`
	Emotion          string           `db:"emotion"`
	LookAndFeel      string           `db:"look_and_feel"`
	CombinedMetadata string           `db:"combined_metadata"`
	CombinedVector   *pgvector.Vector `db:"combined_vector"`
	Tags             []string         `db:"tags"`
	IsPublic         bool             `db:"is_public"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        *time.Time       `db:"updated_at"`
	Similarity       float64          `db:"similarity"` // только в выдаче search_similar_assets
}

// OutboxEventModel представляет запись таблицы outbox_events.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
