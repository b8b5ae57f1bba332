package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DRSN-tech/nudge-backend/internal/delivery/v1/dto"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
)

const (
	maxExploreBodySize = 25 << 20 // скриншот приходит data URL внутри JSON
	exploreFailed      = "Explore function failed"
)

type ExploreHandler struct {
	exploreUsecase usecase.ExploreUC
	logger         logger.Logger
}

func NewExploreHandler(exploreUsecase usecase.ExploreUC, logger logger.Logger) *ExploreHandler {
	return &ExploreHandler{exploreUsecase: exploreUsecase, logger: logger}
}

// explore
//
//	@Summary		Подборка вдохновения
//	@Description	Анализирует скриншот, проект и ключевые слова; возвращает до 6 результатов: найденные ассеты и сгенерированные изображения
//	@Tags			explore
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ExploreRequest	true	"Источники контекста, хотя бы один обязателен"
//	@Success		200		{object}	dto.ExploreResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		500		{object}	ErrorResponse	"Некорректный JSON или внутренняя ошибка"
//	@Router			/explore [post]
func (h *ExploreHandler) explore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxExploreBodySize)

	// некорректный JSON считается фатальной ошибкой запроса, а не ошибкой валидации
	var req dto.ExploreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusInternalServerError, exploreFailed, err.Error())
		WriteErrorDetails(w, http.StatusInternalServerError, exploreFailed, err.Error())
		return
	}

	res, err := h.exploreUsecase.Explore(r.Context(), req.ToUseCase())
	if err != nil {
		if errors.Is(err, e.ErrValidation) {
			h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
			WriteError(w, err)
			return
		}

		h.logger.Errorf(err, "%s", exploreFailed)
		WriteErrorDetails(w, http.StatusInternalServerError, exploreFailed, err.Error())
		return
	}

	WriteSuccess(w, http.StatusOK, dto.NewExploreResponse(res))
}
