package usecase

import (
	"context"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
)

type ExploreUC interface {
	Explore(ctx context.Context, req *ExploreReq) (*ExploreRes, error)
}

type ProjectUC interface {
	CreateProject(ctx context.Context, req *CreateProjectReq) (*domain.Project, error)
	ListProjects(ctx context.Context, req *ListReq) (*ListProjectsRes, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	UpdateProject(ctx context.Context, req *UpdateProjectReq) (*domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

type AssetUC interface {
	CreateAsset(ctx context.Context, req *CreateAssetReq) (*domain.Asset, error)
	ListAssets(ctx context.Context, req *ListAssetsReq) (*ListAssetsRes, error)
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
	UpdateAsset(ctx context.Context, req *UpdateAssetReq) (*domain.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
}
