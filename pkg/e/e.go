package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrUnsupportedProvider  = fmt.Errorf("unsupported ai provider")
	ErrUnsupportedBackend   = fmt.Errorf("unsupported vector backend")

	// Ошибки внешних вызовов. Для explore все они мягкие и попадают в диагностику.
	ErrAnalysis    = fmt.Errorf("metadata analysis failed")
	ErrEmbedding   = fmt.Errorf("embedding generation failed")
	ErrSearch      = fmt.Errorf("similarity search failed")
	ErrGeneration  = fmt.Errorf("image generation failed")
	ErrPersistence = fmt.Errorf("image persistence failed")

	// Внутренние ошибки с векторами
	ErrEmptyVectors         = fmt.Errorf("empty vectors")
	ErrVectorEmbeddingEmpty = fmt.Errorf("vector embedding is empty")

	// 400 Bad Request
	ErrValidation           = fmt.Errorf("validation failed")
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrNoExploreInput       = fmt.Errorf("%w: at least one of screenshot, projectId or keywords is required", ErrValidation)
	ErrInvalidScreenshot    = fmt.Errorf("%w: screenshot must be a data URL or an http(s) URL", ErrValidation)
	ErrProjectNameRequired  = fmt.Errorf("%w: project name is required", ErrValidation)
	ErrAssetFieldsRequired  = fmt.Errorf("%w: filename, file_url and project_id are required", ErrValidation)
	ErrInvalidFileURL       = fmt.Errorf("%w: file_url must be a valid http(s) URL", ErrValidation)
	ErrInvalidPagination    = fmt.Errorf("%w: limit must be between 1 and 100, offset must not be negative", ErrValidation)
	ErrUnsupportedMediaType = fmt.Errorf("%w: unsupported media type", ErrValidation)

	// 404 Not Found
	ErrProjectNotFound = fmt.Errorf("project not found")
	ErrAssetNotFound   = fmt.Errorf("asset not found")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
