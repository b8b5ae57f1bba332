package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/nudge-backend/internal/delivery/v1/dto"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type AssetHandler struct {
	assetUsecase usecase.AssetUC
	logger       logger.Logger
}

func NewAssetHandler(assetUsecase usecase.AssetUC, logger logger.Logger) *AssetHandler {
	return &AssetHandler{assetUsecase: assetUsecase, logger: logger}
}

// createAsset
//
//	@Summary		Создание ассета
//	@Description	Регистрирует изображение; недостающие поля тройки заполняются анализом изображения
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateAssetRequest	true	"Ассет"
//	@Success		201		{object}	dto.AssetResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/assets [post]
func (h *AssetHandler) createAsset(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAssetRequest
	if err := decodeJSON(w, r, maxJSONBodySize, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	asset, err := h.assetUsecase.CreateAsset(r.Context(), req.ToUseCase())
	if err != nil {
		h.writeError(w, err)
		return
	}

	autoAnalyzed := req.AutoAnalyzed()
	WriteSuccess(w, http.StatusCreated, dto.AssetResponse{
		Asset:        dto.NewAsset(asset),
		Message:      "Asset created successfully",
		AutoAnalyzed: &autoAnalyzed,
	})
}

// listAssets
//
//	@Summary		Список ассетов
//	@Description	С project_id возвращает только публичные ассеты проекта
//	@Tags			assets
//	@Produce		json
//	@Param			limit		query		int		false	"1..100, по умолчанию 20"
//	@Param			offset		query		int		false	"Смещение"
//	@Param			search		query		string	false	"Поиск по имени файла и тройке"
//	@Param			tags		query		string	false	"Теги через запятую"
//	@Param			project_id	query		string	false	"Фильтр по проекту"
//	@Success		200			{object}	dto.ListAssetsResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/assets [get]
func (h *AssetHandler) listAssets(w http.ResponseWriter, r *http.Request) {
	listReq, err := parseListReq(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	q := r.URL.Query()
	req := &usecase.ListAssetsReq{
		ListReq:   listReq,
		Tags:      parseTags(q.Get("tags")),
		ProjectID: strings.TrimSpace(q.Get("project_id")),
	}

	res, err := h.assetUsecase.ListAssets(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, dto.NewListAssetsResponse(res, req.ProjectID))
}

// getAsset
//
//	@Summary	Ассет по id
//	@Tags		assets
//	@Produce	json
//	@Param		id	path		string	true	"ID ассета"
//	@Success	200	{object}	dto.AssetResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/assets/{id} [get]
func (h *AssetHandler) getAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetUsecase.GetAsset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, dto.AssetResponse{Asset: dto.NewAsset(asset)})
}

// updateAsset
//
//	@Summary	Обновление ассета
//	@Tags		assets
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"ID ассета"
//	@Param		request	body		dto.UpdateAssetRequest	true	"Изменяемые поля"
//	@Success	200		{object}	dto.AssetResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/assets/{id} [put]
func (h *AssetHandler) updateAsset(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAssetRequest
	if err := decodeJSON(w, r, maxJSONBodySize, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	asset, err := h.assetUsecase.UpdateAsset(r.Context(), req.ToUseCase(chi.URLParam(r, "id")))
	if err != nil {
		h.writeError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, dto.AssetResponse{
		Asset:   dto.NewAsset(asset),
		Message: "Asset updated successfully",
	})
}

// deleteAsset
//
//	@Summary	Удаление ассета
//	@Tags		assets
//	@Produce	json
//	@Param		id	path		string	true	"ID ассета"
//	@Success	200	{object}	dto.MessageResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/assets/{id} [delete]
func (h *AssetHandler) deleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.assetUsecase.DeleteAsset(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, dto.MessageResponse{Message: "Asset deleted successfully"})
}

func (h *AssetHandler) writeError(w http.ResponseWriter, err error) {
	code, _ := ToHTTPResponse(err)
	if code == http.StatusInternalServerError {
		h.logger.Errorf(err, "asset request failed")
	} else {
		h.logger.Warnf("%d %s", code, err.Error())
	}

	WriteError(w, err)
}
