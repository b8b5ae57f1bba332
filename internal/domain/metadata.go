package domain

import (
	"fmt"
	"strings"

	"github.com/DRSN-tech/nudge-backend/pkg/structured"
)

// MaxMetadataFieldLen — максимальная длина (в символах) каждого поля тройки метаданных.
const MaxMetadataFieldLen = 120

// Имена полей тройки в JSON-ответах моделей и во внешнем API.
const (
	FieldKeywords    = "keywords"
	FieldEmotion     = "emotion"
	FieldLookAndFeel = "look_and_feel"
)

// MetadataFields — обязательные поля тройки в порядке их следования.
var MetadataFields = []string{FieldKeywords, FieldEmotion, FieldLookAndFeel}

// Metadata — тройка {keywords, emotion, look_and_feel}, описывающая визуальный и эмоциональный стиль.
type Metadata struct {
	Keywords    string
	Emotion     string
	LookAndFeel string
}

func NewMetadata(keywords, emotion, lookAndFeel string) *Metadata {
	m := Metadata{
		Keywords:    keywords,
		Emotion:     emotion,
		LookAndFeel: lookAndFeel,
	}.Clamp()

	return &m
}

// MetadataFromFields собирает тройку из результата структурного декодера.
func MetadataFromFields(fields map[string]string) *Metadata {
	return NewMetadata(fields[FieldKeywords], fields[FieldEmotion], fields[FieldLookAndFeel])
}

// Clamp обрезает каждое поле до MaxMetadataFieldLen символов.
func (m Metadata) Clamp() Metadata {
	return Metadata{
		Keywords:    structured.Truncate(strings.TrimSpace(m.Keywords), MaxMetadataFieldLen),
		Emotion:     structured.Truncate(strings.TrimSpace(m.Emotion), MaxMetadataFieldLen),
		LookAndFeel: structured.Truncate(strings.TrimSpace(m.LookAndFeel), MaxMetadataFieldLen),
	}
}

// IsComplete сообщает, заполнены ли все три поля.
func (m Metadata) IsComplete() bool {
	return strings.TrimSpace(m.Keywords) != "" &&
		strings.TrimSpace(m.Emotion) != "" &&
		strings.TrimSpace(m.LookAndFeel) != ""
}

// IsEmpty сообщает, что ни одно поле не заполнено.
func (m Metadata) IsEmpty() bool {
	return strings.TrimSpace(m.Keywords+m.Emotion+m.LookAndFeel) == ""
}

// WithDefaults заполняет пустые поля значениями из defaults.
func (m Metadata) WithDefaults(defaults Metadata) Metadata {
	if strings.TrimSpace(m.Keywords) == "" {
		m.Keywords = defaults.Keywords
	}
	if strings.TrimSpace(m.Emotion) == "" {
		m.Emotion = defaults.Emotion
	}
	if strings.TrimSpace(m.LookAndFeel) == "" {
		m.LookAndFeel = defaults.LookAndFeel
	}

	return m
}

// EmbeddingText — текст, по которому строится вектор сущности каталога.
func (m Metadata) EmbeddingText() string {
	return fmt.Sprintf("%s %s %s", m.Keywords, m.Emotion, m.LookAndFeel)
}

// Label — фрагмент объединённой строки запроса вида "keywords: K, emotion: E, look_and_feel: L".
func (m Metadata) Label() string {
	return fmt.Sprintf("keywords: %s, emotion: %s, look_and_feel: %s", m.Keywords, m.Emotion, m.LookAndFeel)
}

// Значения по умолчанию, когда анализ недоступен или не удался.
var (
	DefaultProjectMetadata = Metadata{
		Keywords:    "business, professional, modern",
		Emotion:     "trustworthy, innovative, reliable",
		LookAndFeel: "clean, organized, contemporary",
	}

	DefaultAssetMetadata = Metadata{
		Keywords:    "design, visual, creative",
		Emotion:     "professional, modern",
		LookAndFeel: "clean, structured",
	}
)

// GeneratedFallbackMetadata — тройка для сгенерированного изображения, если разметить его промпт не удалось.
func GeneratedFallbackMetadata(prompt string) *Metadata {
	return NewMetadata(prompt, "creative, inspiring", "professional, artistic")
}
