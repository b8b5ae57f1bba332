package ai

import (
	"errors"
	"os"

	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"gopkg.in/yaml.v3"
)

const (
	defaultScreenshotPrompt = "Analyze this design screenshot and extract:\n" +
		"1. Keywords (max 120 chars): Design elements, style, objects, themes\n" +
		"2. Emotion (max 120 chars): Feelings and mood conveyed  \n" +
		"3. Look and feel (max 120 chars): Visual style, aesthetic, composition\n\n" +
		`Respond in JSON format: {"keywords": "...", "emotion": "...", "look_and_feel": "..."}`

	defaultAssetImagePrompt = "Analyze this design/image and extract:\n" +
		"1. Keywords (max 120 chars): Design elements, style, objects, themes, colors\n" +
		"2. Emotion (max 120 chars): Feelings and mood conveyed\n" +
		"3. Look and feel (max 120 chars): Visual style, aesthetic, composition\n\n" +
		`Respond in JSON format: {"keywords": "...", "emotion": "...", "look_and_feel": "..."}`

	// %s: текст брифа
	defaultBriefPrompt = "Analyze this project brief and extract:\n" +
		"1. Keywords (max 120 chars): Main themes, industry, style preferences, requirements\n" +
		"2. Emotion (max 120 chars): Desired feelings and brand personality\n" +
		"3. Look and feel (max 120 chars): Visual style, aesthetic direction, design approach\n\n" +
		"Brief: \"%s\"\n\n" +
		`Respond in JSON format: {"keywords": "...", "emotion": "...", "look_and_feel": "..."}`

	defaultGeneratedPrompt = "Analyze the user's design prompt and extract:\n" +
		"1. Keywords (max 120 chars): Design elements, style, objects, themes, colors, patterns\n" +
		"2. Emotion (max 120 chars): Feelings and mood conveyed, emotional response\n" +
		"3. Look and feel (max 120 chars): Visual style, aesthetic, composition, design approach\n\n" +
		`Respond in JSON format: {"keywords": "...", "emotion": "...", "look_and_feel": "..."}`

	// %s: исходные метаданные, %d: число вариаций
	defaultVariationsPrompt = "Given this design metadata: \"%s\"\n\n" +
		"Generate %d different variations that maintain the same theme but use different words. Each variation should have:\n" +
		"- Keywords: Similar concepts but different specific words (e.g., if \"birthday cake\" → use \"party hat\", \"balloon\", \"gift box\")\n" +
		"- Emotion: Related feelings but different expressions (e.g., if \"joyful\" → use \"excited\", \"cheerful\", \"delighted\")\n" +
		"- Look and feel: Similar aesthetic but different descriptors (e.g., if \"vibrant\" → use \"colorful\", \"energetic\", \"lively\")\n\n" +
		"Return ONLY the variations as a JSON array of strings, each containing the full metadata for one variation. Example format:\n" +
		"[\n" +
		"  \"keywords: party hat, celebration, festive, emotion: excited, cheerful, look and feel: colorful, energetic, playful\",\n" +
		"  \"keywords: balloon, party, fun, emotion: delighted, happy, look and feel: vibrant, lively, cheerful\"\n" +
		"]"

	defaultImagePrefix = "Create a design inspiration based on: "
)

// Prompts: инструкции для моделей. Любой ключ можно переопределить YAML-файлом.
type Prompts struct {
	Screenshot      string `yaml:"screenshot"`
	AssetImage      string `yaml:"asset_image"`
	Brief           string `yaml:"brief"`
	GeneratedPrompt string `yaml:"generated_prompt"`
	Variations      string `yaml:"variations"`
	ImagePrefix     string `yaml:"image_prefix"`
}

func DefaultPrompts() *Prompts {
	return &Prompts{
		Screenshot:      defaultScreenshotPrompt,
		AssetImage:      defaultAssetImagePrompt,
		Brief:           defaultBriefPrompt,
		GeneratedPrompt: defaultGeneratedPrompt,
		Variations:      defaultVariationsPrompt,
		ImagePrefix:     defaultImagePrefix,
	}
}

// LoadPrompts читает переопределения из YAML. Пустой путь или отсутствующий файл дают значения по умолчанию.
func LoadPrompts(path string) (*Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return prompts, nil
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return ParsePrompts(data)
}

// ParsePrompts накладывает YAML поверх значений по умолчанию; незаданные ключи не меняются.
func ParsePrompts(data []byte) (*Prompts, error) {
	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	prompts := DefaultPrompts()
	if override.Screenshot != "" {
		prompts.Screenshot = override.Screenshot
	}
	if override.AssetImage != "" {
		prompts.AssetImage = override.AssetImage
	}
	if override.Brief != "" {
		prompts.Brief = override.Brief
	}
	if override.GeneratedPrompt != "" {
		prompts.GeneratedPrompt = override.GeneratedPrompt
	}
	if override.Variations != "" {
		prompts.Variations = override.Variations
	}
	if override.ImagePrefix != "" {
		prompts.ImagePrefix = override.ImagePrefix
	}

	return prompts, nil
}
