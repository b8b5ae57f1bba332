package clients

import (
	"context"
	"fmt"

	config "github.com/DRSN-tech/nudge-backend/internal/cfg"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// payloadIndexes: поля payload, по которым фильтрует поиск ассетов.
var payloadIndexes = map[string]qdrant.FieldType{
	"is_public":  qdrant.FieldType_FieldTypeBool,
	"project_id": qdrant.FieldType_FieldTypeKeyword,
}

type QdrantClient struct {
	Client *qdrant.Client
	cfg    *config.QdrantCfg
}

func NewQdrantClient(cfg *config.QdrantCfg) (*QdrantClient, error) {
	qdrantClient, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.ApiKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &QdrantClient{
		Client: qdrantClient,
		cfg:    cfg,
	}, nil
}

func (c *QdrantClient) Close() error {
	return c.Client.Close()
}

// EnsureCollection создаёт коллекцию ассетов и индексы payload.
// Существующая коллекция с другой размерностью векторов считается ошибкой конфигурации.
func EnsureCollection(ctx context.Context, client *QdrantClient) error {
	name := client.cfg.QdrantCollectionName

	exists, err := client.Client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if exists {
		info, err := client.Client.GetCollectionInfo(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to get collection info: %w", err)
		}
		if err := checkVectorSize(info, client.cfg.VectorSize); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	} else {
		if err := client.Client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     client.cfg.VectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	for field, fieldType := range payloadIndexes {
		if _, err := client.Client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			Wait:           qdrant.PtrOf(true),
			FieldName:      field,
			FieldType:      fieldType.Enum(),
		}); err != nil {
			return fmt.Errorf("failed to create payload index %s: %w", field, err)
		}
	}

	return nil
}

func checkVectorSize(info *qdrant.CollectionInfo, want uint64) error {
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		// именованные векторы не поддерживаются
		return fmt.Errorf("collection has no default vector params")
	}
	if got := params.GetSize(); got != want {
		return fmt.Errorf("collection vector size %d, configured %d", got, want)
	}
	return nil
}
