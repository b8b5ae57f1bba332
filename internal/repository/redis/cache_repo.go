package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/nudge-backend/internal/cfg"
	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/nudge-backend/pkg/clients"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует проекты: explore читает проект на каждом запросе.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProjectConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProjectConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProject возвращает проект из кэша; промах: (nil, nil).
func (c *CacheRepo) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	key := projectKey(id)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, nil
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := unmarshalProject(data)
	if err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, nil
	}

	if model.ID != id {
		c.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", id, model.ID)
		if err := c.client.Client.Del(ctx, key).Err(); err != nil {
			c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, nil
	}

	return c.conv.ToEntity(model), nil
}

// SetProject кэширует проект на ProjectTTL.
func (c *CacheRepo) SetProject(ctx context.Context, project *domain.Project) error {
	data, err := json.Marshal(c.conv.ToRedisModel(project))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, projectKey(project.ID), data, c.cfg.ProjectTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) DeleteProject(ctx context.Context, id string) error {
	if err := c.client.Client.Del(ctx, projectKey(id)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func unmarshalProject(data []byte) (*converter.ProjectRedisModel, error) {
	var model converter.ProjectRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

func projectKey(id string) string {
	return fmt.Sprintf("project:%s", id)
}
