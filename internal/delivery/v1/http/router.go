package http

import (
	_ "github.com/DRSN-tech/nudge-backend/docs" // регистрация swagger-спецификации
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(exploreUC usecase.ExploreUC, projectUC usecase.ProjectUC, assetUC usecase.AssetUC) {
	r.router.Use(middleware.RequestID, CORS, Recover(r.logger))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerExploreRoutes(v1, NewExploreHandler(exploreUC, r.logger))
		registerProjectRoutes(v1, NewProjectHandler(projectUC, r.logger))
		registerAssetRoutes(v1, NewAssetHandler(assetUC, r.logger))
	})
}

func registerExploreRoutes(router chi.Router, h *ExploreHandler) {
	router.Post("/explore", h.explore)
}

func registerProjectRoutes(router chi.Router, h *ProjectHandler) {
	router.Route("/projects", func(pr chi.Router) {
		pr.Get("/", h.listProjects)
		pr.Post("/", h.createProject)
		pr.Get("/{id}", h.getProject)
		pr.Put("/{id}", h.updateProject)
		pr.Delete("/{id}", h.deleteProject)
	})
}

func registerAssetRoutes(router chi.Router, h *AssetHandler) {
	router.Route("/assets", func(as chi.Router) {
		as.Get("/", h.listAssets)
		as.Post("/", h.createAsset)
		as.Get("/{id}", h.getAsset)
		as.Put("/{id}", h.updateAsset)
		as.Delete("/{id}", h.deleteAsset)
	})
}
