package domain

// GeneratedImage — изображение, сгенерированное в рамках одного запроса explore.
type GeneratedImage struct {
	URL               string // постоянная ссылка хранилища или временная ссылка провайдера
	Prompt            string // промпт без завершающей точки
	OriginalURL       string // ссылка провайдера
	MetadataVariation string
	Temporary         bool // не удалось сохранить в хранилище, URL протухнет
}

func NewGeneratedImage(url, prompt, originalURL, variation string, temporary bool) *GeneratedImage {
	return &GeneratedImage{
		URL:               url,
		Prompt:            prompt,
		OriginalURL:       originalURL,
		MetadataVariation: variation,
		Temporary:         temporary,
	}
}
