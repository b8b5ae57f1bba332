package http

import (
	"net/http"

	"github.com/DRSN-tech/nudge-backend/internal/delivery/v1/dto"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ProjectHandler struct {
	projectUsecase usecase.ProjectUC
	logger         logger.Logger
}

func NewProjectHandler(projectUsecase usecase.ProjectUC, logger logger.Logger) *ProjectHandler {
	return &ProjectHandler{projectUsecase: projectUsecase, logger: logger}
}

// createProject
//
//	@Summary		Создание проекта
//	@Description	Создает проект; недостающие поля тройки заполняются анализом брифа
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateProjectRequest	true	"Проект"
//	@Success		201		{object}	dto.ProjectResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/projects [post]
func (h *ProjectHandler) createProject(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProjectRequest
	if err := decodeJSON(w, r, maxJSONBodySize, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	project, err := h.projectUsecase.CreateProject(r.Context(), req.ToUseCase())
	if err != nil {
		h.writeError(w, err)
		return
	}

	autoAnalyzed := req.AutoAnalyzed()
	WriteSuccess(w, http.StatusCreated, dto.ProjectResponse{
		Project:      dto.NewProject(project),
		Message:      "Project created successfully",
		AutoAnalyzed: &autoAnalyzed,
	})
}

// listProjects
//
//	@Summary		Список проектов
//	@Tags			projects
//	@Produce		json
//	@Param			limit	query		int		false	"1..100, по умолчанию 20"
//	@Param			offset	query		int		false	"Смещение"
//	@Param			search	query		string	false	"Поиск по названию и брифу"
//	@Success		200		{object}	dto.ListProjectsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/projects [get]
func (h *ProjectHandler) listProjects(w http.ResponseWriter, r *http.Request) {
	req, err := parseListReq(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.projectUsecase.ListProjects(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, dto.NewListProjectsResponse(res))
}

// getProject
//
//	@Summary	Проект по id
//	@Tags		projects
//	@Produce	json
//	@Param		id	path		string	true	"ID проекта"
//	@Success	200	{object}	dto.ProjectResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/projects/{id} [get]
func (h *ProjectHandler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectUsecase.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, dto.ProjectResponse{Project: dto.NewProject(project)})
}

// updateProject
//
//	@Summary		Обновление проекта
//	@Description	Частичное обновление; при изменении тройки пересчитывается эмбеддинг
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"ID проекта"
//	@Param			request	body		dto.UpdateProjectRequest	true	"Изменяемые поля"
//	@Success		200		{object}	dto.ProjectResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/projects/{id} [put]
func (h *ProjectHandler) updateProject(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProjectRequest
	if err := decodeJSON(w, r, maxJSONBodySize, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	project, err := h.projectUsecase.UpdateProject(r.Context(), req.ToUseCase(chi.URLParam(r, "id")))
	if err != nil {
		h.writeError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, dto.ProjectResponse{
		Project: dto.NewProject(project),
		Message: "Project updated successfully",
	})
}

// deleteProject
//
//	@Summary	Удаление проекта
//	@Tags		projects
//	@Produce	json
//	@Param		id	path		string	true	"ID проекта"
//	@Success	200	{object}	dto.MessageResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/projects/{id} [delete]
func (h *ProjectHandler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projectUsecase.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, dto.MessageResponse{Message: "Project deleted successfully"})
}

func (h *ProjectHandler) writeError(w http.ResponseWriter, err error) {
	code, _ := ToHTTPResponse(err)
	if code == http.StatusInternalServerError {
		h.logger.Errorf(err, "project request failed")
	} else {
		h.logger.Warnf("%d %s", code, err.Error())
	}

	WriteError(w, err)
}
