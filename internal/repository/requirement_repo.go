package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/pkg/logger"
	"sprint-tracker/pkg/metrics"
	"sprint-tracker/pkg/store"
)

// LocalKeyPrefix marks requirements created while the remote store was unreachable.
const LocalKeyPrefix = "local_"

// LocalStore is the on-device copy used when the remote store fails.
type LocalStore interface {
	ReadAll(ctx context.Context, collection string) ([]store.Document, error)
	Put(ctx context.Context, collection, key string, body any) error
	Delete(ctx context.Context, collection, key string) error
}

// RequirementRepository mirrors successful writes into a local store and
// serves from it when the remote store fails. Callers cannot tell which
// store answered.
type RequirementRepository struct {
	remote *Records[model.Requirement, *model.Requirement]
	local  LocalStore
	newKey func() string
	logger *zap.Logger
}

func NewRequirementRepository(s DocumentStore, local LocalStore, logger *zap.Logger) *RequirementRepository {
	return &RequirementRepository{
		remote: NewRecords[model.Requirement](s, RequirementCollection, logger),
		local:  local,
		newKey: func() string { return LocalKeyPrefix + ulid.Make().String() },
		logger: logger,
	}
}

func (r *RequirementRepository) List(ctx context.Context) ([]model.Requirement, error) {
	items, err := r.remote.List(ctx)
	if err == nil {
		return items, nil
	}
	r.fallingBack(ctx, "list", "", err)

	docs, lerr := r.local.ReadAll(ctx, RequirementCollection)
	if lerr != nil {
		r.localFailed(ctx, "list", "", lerr)
		return []model.Requirement{}, nil
	}
	return decodeAll[model.Requirement](ctx, r.logger, RequirementCollection, docs), nil
}

func (r *RequirementRepository) Get(ctx context.Context, key string) (model.Requirement, error) {
	item, err := r.remote.Get(ctx, key)
	if err == nil || errors.Is(err, store.ErrNotFound) {
		return item, err
	}
	r.fallingBack(ctx, "get", key, err)

	docs, lerr := r.local.ReadAll(ctx, RequirementCollection)
	if lerr != nil {
		r.localFailed(ctx, "get", key, lerr)
		return model.Requirement{}, err
	}
	for _, doc := range docs {
		if doc.Key == key {
			return model.Decode[model.Requirement](doc.Key, doc.Raw)
		}
	}
	return model.Requirement{}, fmt.Errorf("get %s/%s: %w", RequirementCollection, key, store.ErrNotFound)
}

// Create returns the remote key, or a local_ key when the remote store failed.
func (r *RequirementRepository) Create(ctx context.Context, item model.Requirement) (string, error) {
	item.Key = ""
	key, err := r.remote.Create(ctx, item)
	if err != nil {
		r.fallingBack(ctx, "create", "", err)
		key = r.newKey()
	}
	r.mirror(ctx, "create", key, item)
	return key, nil
}

func (r *RequirementRepository) Update(ctx context.Context, key string, item model.Requirement) error {
	item.Key = ""
	if err := r.remote.Update(ctx, key, item); err != nil {
		r.fallingBack(ctx, "update", key, err)
	}
	r.mirror(ctx, "update", key, item)
	return nil
}

// Delete always reports success; the local copy is removed either way.
func (r *RequirementRepository) Delete(ctx context.Context, key string) error {
	if err := r.remote.Delete(ctx, key); err != nil {
		r.fallingBack(ctx, "delete", key, err)
	}
	if err := r.local.Delete(ctx, RequirementCollection, key); err != nil {
		r.localFailed(ctx, "delete", key, err)
	}
	return nil
}

func (r *RequirementRepository) mirror(ctx context.Context, op, key string, item model.Requirement) {
	if err := r.local.Put(ctx, RequirementCollection, key, item); err != nil {
		r.localFailed(ctx, op, key, err)
	}
}

func (r *RequirementRepository) fallingBack(ctx context.Context, op, key string, err error) {
	metrics.IncrementStoreFallback(op)
	logger.WithTrace(ctx, r.logger).Warn("remote store failed, using local requirements",
		zap.String("operation", op),
		zap.String("key", key),
		zap.Error(err),
	)
}

func (r *RequirementRepository) localFailed(ctx context.Context, op, key string, err error) {
	logger.WithTrace(ctx, r.logger).Error("local requirement store failed",
		zap.String("operation", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
