package pgdb

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const projectColumns = `id, name, brief, keywords, emotion, look_and_feel, combined_metadata, combined_vector, created_at, updated_at`

// ProjectRepo реализует репозиторий проектов поверх PostgreSQL.
type ProjectRepo struct {
	pool *pgxpool.Pool
	conv converter.ProjectConverter
}

func NewProjectRepo(pool *pgxpool.Pool, conv converter.ProjectConverter) *ProjectRepo {
	return &ProjectRepo{
		pool: pool,
		conv: conv,
	}
}

func (p *ProjectRepo) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	m := p.conv.ToModel(project)
	query := `
		INSERT INTO projects (id, name, brief, keywords, emotion, look_and_feel, combined_metadata, combined_vector)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + projectColumns

	var model converter.ProjectModel
	if err := scanProject(tx.QueryRow(ctx, query,
		m.ID, m.Name, m.Brief, m.Keywords, m.Emotion, m.LookAndFeel, m.CombinedMetadata, m.CombinedVector,
	), &model); err != nil {
		if postgresDuplicate(err) {
			return nil, fmt.Errorf("%s: project with id %s already exists", whereami.WhereAmI(), project.ID)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

func (p *ProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var model converter.ProjectModel
	if err := scanProject(readerFromCtx(ctx, p.pool).QueryRow(ctx, query, id), &model); err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProjectNotFound)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// List возвращает страницу проектов (новые первыми) и общее число подходящих записей.
// Search ищет подстроку в имени, брифе и полях тройки.
func (p *ProjectRepo) List(ctx context.Context, req *usecase.ListReq) ([]domain.Project, int, error) {
	db := readerFromCtx(ctx, p.pool)

	where := ``
	args := []any{}
	if req.Search != "" {
		args = append(args, "%"+req.Search+"%")
		where = `WHERE name ILIKE $1 OR brief ILIKE $1 OR keywords ILIKE $1 OR emotion ILIKE $1 OR look_and_feel ILIKE $1`
	}

	var total int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM projects `+where, args...).Scan(&total); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	query := fmt.Sprintf(`SELECT %s FROM projects %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		projectColumns, where, len(args)+1, len(args)+2)

	rows, err := db.Query(ctx, query, append(args, req.Limit, req.Offset)...)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Project, 0, req.Limit)
	for rows.Next() {
		var model converter.ProjectModel
		if err := scanProject(rows, &model); err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *p.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, total, nil
}

func (p *ProjectRepo) Update(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	m := p.conv.ToModel(project)
	query := `
		UPDATE projects SET
			name = $2,
			brief = $3,
			keywords = $4,
			emotion = $5,
			look_and_feel = $6,
			combined_metadata = $7,
			combined_vector = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns

	var model converter.ProjectModel
	if err := scanProject(tx.QueryRow(ctx, query,
		m.ID, m.Name, m.Brief, m.Keywords, m.Emotion, m.LookAndFeel, m.CombinedMetadata, m.CombinedVector,
	), &model); err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProjectNotFound)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

func (p *ProjectRepo) Delete(ctx context.Context, id string) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	res, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		if notFound(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrProjectNotFound)
		}

		return e.Wrap(whereami.WhereAmI(), err)
	}

	if res.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProjectNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner, m *converter.ProjectModel) error {
	return row.Scan(
		&m.ID, &m.Name, &m.Brief, &m.Keywords, &m.Emotion, &m.LookAndFeel,
		&m.CombinedMetadata, &m.CombinedVector, &m.CreatedAt, &m.UpdatedAt,
	)
}
