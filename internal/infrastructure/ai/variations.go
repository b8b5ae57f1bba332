package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/structured"
)

const (
	variationsMaxTokens   = 800
	variationsTemperature = 0.8
)

// VariationGenerator перефразирует объединённые метаданные в несколько близких по теме вариантов.
type VariationGenerator struct {
	completer Completer
	prompts   *Prompts
}

func NewVariationGenerator(completer Completer, prompts *Prompts) *VariationGenerator {
	if prompts == nil {
		prompts = DefaultPrompts()
	}

	return &VariationGenerator{
		completer: completer,
		prompts:   prompts,
	}
}

// Variations возвращает то, что вернула модель; подгонку под count делает вызывающий.
func (v *VariationGenerator) Variations(ctx context.Context, base string, count int) ([]string, error) {
	const op = "VariationGenerator.Variations"

	req := NewCompletionReq(fmt.Sprintf(v.prompts.Variations, base, count), "", variationsMaxTokens).
		WithTemperature(variationsTemperature)

	content, err := v.completer.Complete(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrGeneration, err))
	}

	items, err := structured.DecodeStringArray(content)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrGeneration, err))
	}

	variations := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			variations = append(variations, item)
		}
	}
	if len(variations) == 0 {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrGeneration, structured.ErrEmptyArray))
	}

	return variations, nil
}
