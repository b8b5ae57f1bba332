package qdrant

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/cfg"
	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// EmbeddingRepo репозиторий для работы с embedding-векторами в Qdrant
type EmbeddingRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewEmbeddingRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *EmbeddingRepo {
	return &EmbeddingRepo{
		client: client,
		cfg:    cfg,
	}
}

// Upsert сохраняет или обновляет embedding-векторы в указанной коллекции Qdrant.
func (q *EmbeddingRepo) Upsert(ctx context.Context, vectors []domain.Embedding) error {
	if len(vectors) == 0 {
		return nil
	}

	reqVectors := make([]*qdrant.PointStruct, 0, len(vectors))
	for _, vector := range vectors {
		if len(vector.Vector) == 0 {
			return e.Wrap(whereami.WhereAmI(), e.ErrVectorEmbeddingEmpty)
		}

		reqVectors = append(reqVectors, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(vector.ID),
			Vectors: qdrant.NewVectors(vector.Vector...),
			Payload: qdrant.NewValueMap(vector.Payload),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points:         reqVectors,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Delete удаляет точки по id ассетов.
func (q *EmbeddingRepo) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewIDUUID(id))
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// SearchSimilar ищет публичные ассеты по косинусной близости. Qdrant отдаёт score >= порога,
// поэтому равные порогу отбрасываются здесь.
func (q *EmbeddingRepo) SearchSimilar(ctx context.Context, vector []float32, threshold float64, limit int) ([]domain.Asset, error) {
	if len(vector) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrVectorEmbeddingEmpty)
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchBool("is_public", true)},
		},
		Limit:          qdrant.PtrOf(uint64(limit)),
		ScoreThreshold: qdrant.PtrOf(float32(threshold)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %w", e.ErrSearch, err))
	}

	result := make([]domain.Asset, 0, len(points))
	for _, p := range points {
		if float64(p.GetScore()) <= threshold {
			continue
		}

		result = append(result, AssetFromPayload(p.GetPayload(), float64(p.GetScore())))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SimilarityScore > result[j].SimilarityScore
	})

	return result, nil
}

// AssetFromPayload восстанавливает ассет из payload точки (см. domain.NewAssetPayload).
func AssetFromPayload(payload map[string]*qdrant.Value, score float64) domain.Asset {
	str := func(key string) string {
		return payload[key].GetStringValue()
	}

	tags := make([]string, 0)
	for _, v := range payload["tags"].GetListValue().GetValues() {
		if s := v.GetStringValue(); s != "" {
			tags = append(tags, s)
		}
	}

	var createdAt time.Time
	if ns := payload["created_at"].GetIntegerValue(); ns != 0 {
		createdAt = time.Unix(0, ns).UTC()
	}

	return domain.Asset{
		ID:        str("asset_id"),
		ProjectID: str("project_id"),
		Filename:  str("filename"),
		FileURL:   str("file_url"),
		Metadata: domain.Metadata{
			Keywords:    str("keywords"),
			Emotion:     str("emotion"),
			LookAndFeel: str("look_and_feel"),
		},
		Tags:            tags,
		IsPublic:        payload["is_public"].GetBoolValue(),
		SimilarityScore: score,
		CreatedAt:       createdAt,
	}
}
