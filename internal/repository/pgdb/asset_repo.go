package pgdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/pgvector/pgvector-go"
)

const assetColumns = `id, project_id, filename, file_url, keywords, emotion, look_and_feel, combined_metadata, combined_vector, tags, is_public, created_at, updated_at`

// AssetRepo реализует репозиторий ассетов поверх PostgreSQL и поиск похожих через pgvector.
type AssetRepo struct {
	pool *pgxpool.Pool
	conv converter.AssetConverter
}

func NewAssetRepo(pool *pgxpool.Pool, conv converter.AssetConverter) *AssetRepo {
	return &AssetRepo{
		pool: pool,
		conv: conv,
	}
}

func (a *AssetRepo) Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	m := a.conv.ToModel(asset)
	query := `
		INSERT INTO assets (id, project_id, filename, file_url, keywords, emotion, look_and_feel,
			combined_metadata, combined_vector, tags, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + assetColumns

	var model converter.AssetModel
	if err := scanAsset(tx.QueryRow(ctx, query,
		m.ID, m.ProjectID, m.Filename, m.FileURL, m.Keywords, m.Emotion, m.LookAndFeel,
		m.CombinedMetadata, m.CombinedVector, m.Tags, m.IsPublic,
	), &model); err != nil {
		if postgresDuplicate(err) {
			return nil, fmt.Errorf("%s: asset with id %s already exists", whereami.WhereAmI(), asset.ID)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToEntity(&model), nil
}

func (a *AssetRepo) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	var model converter.AssetModel
	if err := scanAsset(readerFromCtx(ctx, a.pool).QueryRow(ctx, query, id), &model); err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAssetNotFound)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToEntity(&model), nil
}

// List возвращает страницу ассетов (новые первыми). Фильтр по проекту выдаёт только публичные ассеты.
func (a *AssetRepo) List(ctx context.Context, req *usecase.ListAssetsReq) ([]domain.Asset, int, error) {
	db := readerFromCtx(ctx, a.pool)
	where, args := assetFilter(req)

	var total int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM assets `+where, args...).Scan(&total); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	query := fmt.Sprintf(`SELECT %s FROM assets %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		assetColumns, where, len(args)+1, len(args)+2)

	rows, err := db.Query(ctx, query, append(args, req.Limit, req.Offset)...)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models := make([]*converter.AssetModel, 0, req.Limit)
	for rows.Next() {
		var model converter.AssetModel
		if err := scanAsset(rows, &model); err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}

		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToArrEntity(models), total, nil
}

func (a *AssetRepo) Update(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	m := a.conv.ToModel(asset)
	query := `
		UPDATE assets SET
			project_id = $2,
			filename = $3,
			file_url = $4,
			keywords = $5,
			emotion = $6,
			look_and_feel = $7,
			combined_metadata = $8,
			combined_vector = $9,
			tags = $10,
			is_public = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + assetColumns

	var model converter.AssetModel
	if err := scanAsset(tx.QueryRow(ctx, query,
		m.ID, m.ProjectID, m.Filename, m.FileURL, m.Keywords, m.Emotion, m.LookAndFeel,
		m.CombinedMetadata, m.CombinedVector, m.Tags, m.IsPublic,
	), &model); err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAssetNotFound)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToEntity(&model), nil
}

func (a *AssetRepo) Delete(ctx context.Context, id string) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	res, err := tx.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		if notFound(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrAssetNotFound)
		}

		return e.Wrap(whereami.WhereAmI(), err)
	}

	if res.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrAssetNotFound)
	}

	return nil
}

// SearchSimilar вызывает search_similar_assets: similarity = 1 - косинусное расстояние,
// строго больше threshold, по убыванию сходства.
func (a *AssetRepo) SearchSimilar(ctx context.Context, vector []float32, threshold float64, limit int) ([]domain.Asset, error) {
	if len(vector) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrVectorEmbeddingEmpty)
	}

	query := `
		SELECT id, project_id, filename, file_url, keywords, emotion, look_and_feel,
			tags, is_public, created_at, updated_at, similarity
		FROM search_similar_assets($1, $2, $3)
	`

	rows, err := a.pool.Query(ctx, query, pgvector.NewVector(vector), threshold, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %w", e.ErrSearch, err))
	}
	defer rows.Close()

	models := make([]*converter.AssetModel, 0, limit)
	for rows.Next() {
		var m converter.AssetModel
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.Filename, &m.FileURL, &m.Keywords, &m.Emotion, &m.LookAndFeel,
			&m.Tags, &m.IsPublic, &m.CreatedAt, &m.UpdatedAt, &m.Similarity,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %w", e.ErrSearch, err))
		}

		models = append(models, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %w", e.ErrSearch, err))
	}

	return a.conv.ToArrEntity(models), nil
}

// assetFilter строит WHERE для выборки ассетов и её аргументы.
func assetFilter(req *usecase.ListAssetsReq) (string, []any) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if req.ProjectID != "" {
		args = append(args, req.ProjectID)
		conds = append(conds, fmt.Sprintf("project_id = $%d AND is_public", len(args)))
	}
	if len(req.Tags) > 0 {
		args = append(args, req.Tags)
		conds = append(conds, fmt.Sprintf("tags @> $%d", len(args)))
	}
	if req.Search != "" {
		args = append(args, "%"+req.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(filename ILIKE $%[1]d OR keywords ILIKE $%[1]d OR emotion ILIKE $%[1]d OR look_and_feel ILIKE $%[1]d)", n))
	}

	if len(conds) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func scanAsset(row scanner, m *converter.AssetModel) error {
	return row.Scan(
		&m.ID, &m.ProjectID, &m.Filename, &m.FileURL, &m.Keywords, &m.Emotion, &m.LookAndFeel,
		&m.CombinedMetadata, &m.CombinedVector, &m.Tags, &m.IsPublic, &m.CreatedAt, &m.UpdatedAt,
	)
}
