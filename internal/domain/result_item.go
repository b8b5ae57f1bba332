package domain

type ResultType string

const (
	ResultTypeAsset     ResultType = "asset"
	ResultTypeGenerated ResultType = "generated"
)

// ResultItem — элемент выдачи explore: найденный ассет или сгенерированное изображение.
type ResultItem struct {
	ID       string
	Type     ResultType
	ImageURL string
	Metadata Metadata

	// только для asset
	SimilarityScore float64

	// только для generated
	PromptUsed        string
	MetadataVariation string
}

func NewAssetResult(asset *Asset) *ResultItem {
	return &ResultItem{
		ID:              asset.ID,
		Type:            ResultTypeAsset,
		ImageURL:        asset.FileURL,
		Metadata:        asset.Metadata.Clamp(),
		SimilarityScore: asset.SimilarityScore,
	}
}

func NewGeneratedResult(id string, image *GeneratedImage, metadata Metadata) *ResultItem {
	return &ResultItem{
		ID:                id,
		Type:              ResultTypeGenerated,
		ImageURL:          image.URL,
		Metadata:          metadata.Clamp(),
		PromptUsed:        image.Prompt,
		MetadataVariation: image.MetadataVariation,
	}
}
