package ai

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/DRSN-tech/nudge-backend/pkg/structured"
)

const extractionMaxTokens = 300

// Extractor размечает изображения и тексты тройкой метаданных. Один вызов модели, без повторов.
type Extractor struct {
	completer Completer
	prompts   *Prompts
	logger    logger.Logger
}

func NewExtractor(completer Completer, prompts *Prompts, logger logger.Logger) *Extractor {
	if prompts == nil {
		prompts = DefaultPrompts()
	}

	return &Extractor{
		completer: completer,
		prompts:   prompts,
		logger:    logger,
	}
}

func (x *Extractor) FromScreenshot(ctx context.Context, imageURL string) (*domain.Metadata, error) {
	return x.extract(ctx, "Extractor.FromScreenshot", NewCompletionReq(x.prompts.Screenshot, imageURL, extractionMaxTokens))
}

func (x *Extractor) FromAssetImage(ctx context.Context, imageURL string) (*domain.Metadata, error) {
	return x.extract(ctx, "Extractor.FromAssetImage", NewCompletionReq(x.prompts.AssetImage, imageURL, extractionMaxTokens))
}

func (x *Extractor) FromBrief(ctx context.Context, brief string) (*domain.Metadata, error) {
	return x.extract(ctx, "Extractor.FromBrief", NewCompletionReq(fmt.Sprintf(x.prompts.Brief, brief), "", extractionMaxTokens))
}

// FromPrompt размечает промпт, по которому было сгенерировано изображение.
func (x *Extractor) FromPrompt(ctx context.Context, prompt string) (*domain.Metadata, error) {
	content := x.prompts.GeneratedPrompt + "\n\nUser prompt: " + prompt
	return x.extract(ctx, "Extractor.FromPrompt", NewCompletionReq(content, "", extractionMaxTokens))
}

func (x *Extractor) extract(ctx context.Context, op string, req *CompletionReq) (*domain.Metadata, error) {
	content, err := x.completer.Complete(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrAnalysis, err))
	}

	fields, err := structured.DecodeObject(content, domain.MetadataFields, domain.MaxMetadataFieldLen)
	if err != nil {
		x.logger.Debugf("%s: undecodable reply: %q", op, content)
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrAnalysis, err))
	}

	return domain.MetadataFromFields(fields), nil
}
