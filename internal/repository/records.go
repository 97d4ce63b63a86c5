package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/pkg/logger"
	"sprint-tracker/pkg/store"
)

// Collection names in the remote store.
const (
	EmployeeCollection    = "employeelist"
	DepartmentCollection  = "departmentlist"
	ApplicationCollection = "applicationlist"
	SprintCollection      = "sprintlist"
	IssueCollection       = "issuetrackerlist"
	RequirementCollection = "requirement_list"
)

// DocumentStore is the remote store as seen by repositories.
type DocumentStore interface {
	List(ctx context.Context, collection string) ([]store.Document, error)
	Get(ctx context.Context, collection, key string) (store.Document, error)
	Create(ctx context.Context, collection string, body any) (string, error)
	Replace(ctx context.Context, collection, key string, body any) error
	Delete(ctx context.Context, collection, key string) error
}

// Records is the accessor for one collection of T.
type Records[T any, PT model.Keyed[T]] struct {
	store      DocumentStore
	collection string
	logger     *zap.Logger
}

func NewRecords[T any, PT model.Keyed[T]](s DocumentStore, collection string, logger *zap.Logger) *Records[T, PT] {
	return &Records[T, PT]{store: s, collection: collection, logger: logger}
}

type (
	EmployeeRepository    = Records[model.Employee, *model.Employee]
	DepartmentRepository  = Records[model.Department, *model.Department]
	ApplicationRepository = Records[model.Application, *model.Application]
	SprintRepository      = Records[model.Sprint, *model.Sprint]
	IssueRepository       = Records[model.Issue, *model.Issue]
)

func NewEmployeeRepository(s DocumentStore, logger *zap.Logger) *EmployeeRepository {
	return NewRecords[model.Employee](s, EmployeeCollection, logger)
}

func NewDepartmentRepository(s DocumentStore, logger *zap.Logger) *DepartmentRepository {
	return NewRecords[model.Department](s, DepartmentCollection, logger)
}

func NewApplicationRepository(s DocumentStore, logger *zap.Logger) *ApplicationRepository {
	return NewRecords[model.Application](s, ApplicationCollection, logger)
}

func NewSprintRepository(s DocumentStore, logger *zap.Logger) *SprintRepository {
	return NewRecords[model.Sprint](s, SprintCollection, logger)
}

func NewIssueRepository(s DocumentStore, logger *zap.Logger) *IssueRepository {
	return NewRecords[model.Issue](s, IssueCollection, logger)
}

// List returns every record tagged with its key, in key order.
// Records that fail to decode are skipped.
func (r *Records[T, PT]) List(ctx context.Context) ([]T, error) {
	docs, err := r.store.List(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.collection, err)
	}
	return decodeAll[T, PT](ctx, r.logger, r.collection, docs), nil
}

func (r *Records[T, PT]) Get(ctx context.Context, key string) (T, error) {
	doc, err := r.store.Get(ctx, r.collection, key)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s/%s: %w", r.collection, key, err)
	}
	item, err := model.Decode[T, PT](doc.Key, doc.Raw)
	if err != nil {
		return item, fmt.Errorf("get %s/%s: %w: %w", r.collection, key, store.ErrDecode, err)
	}
	return item, nil
}

// Create stores item under a new key and returns the key.
func (r *Records[T, PT]) Create(ctx context.Context, item T) (string, error) {
	PT(&item).SetKey("")
	key, err := r.store.Create(ctx, r.collection, item)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", r.collection, err)
	}
	logger.WithTrace(ctx, r.logger).Info("record created",
		zap.String("collection", r.collection),
		zap.String("key", key),
	)
	return key, nil
}

// Update overwrites the record at key with item.
func (r *Records[T, PT]) Update(ctx context.Context, key string, item T) error {
	PT(&item).SetKey("")
	if err := r.store.Replace(ctx, r.collection, key, item); err != nil {
		return fmt.Errorf("update %s/%s: %w", r.collection, key, err)
	}
	logger.WithTrace(ctx, r.logger).Info("record updated",
		zap.String("collection", r.collection),
		zap.String("key", key),
	)
	return nil
}

func (r *Records[T, PT]) Delete(ctx context.Context, key string) error {
	if err := r.store.Delete(ctx, r.collection, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", r.collection, key, err)
	}
	logger.WithTrace(ctx, r.logger).Info("record deleted",
		zap.String("collection", r.collection),
		zap.String("key", key),
	)
	return nil
}

func decodeAll[T any, PT model.Keyed[T]](ctx context.Context, log *zap.Logger, collection string, docs []store.Document) []T {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		item, err := model.Decode[T, PT](doc.Key, doc.Raw)
		if err != nil {
			logger.WithTrace(ctx, log).Warn("skipping undecodable record",
				zap.String("collection", collection),
				zap.String("key", doc.Key),
				zap.Error(err),
			)
			continue
		}
		items = append(items, item)
	}
	return items
}
