// Package services implements the entity lifecycle engine and the
// role-scoped query engine. Every entry point takes the acting identity
// explicitly and authorizes it before touching the store.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/lib/sl"
	"github.com/diewo77/epic-events/internal/policy"
	"github.com/diewo77/epic-events/internal/report"
)

// Deps are shared by every service. Reporter and Logger are optional.
type Deps struct {
	DB         *gorm.DB
	Authorizer *policy.Authorizer
	Reporter   report.Reporter
	Logger     *slog.Logger
}

type base struct {
	db       *gorm.DB
	authz    *policy.Authorizer
	reporter report.Reporter
	log      *slog.Logger
}

func newBase(d Deps) base {
	b := base{db: d.DB, authz: d.Authorizer, reporter: d.Reporter, log: d.Logger}
	if b.authz == nil {
		b.authz = policy.NewAuthorizer()
	}
	if b.reporter == nil {
		b.reporter = report.Nop{}
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	return b
}

// Services groups the lifecycle services built on the same dependencies.
type Services struct {
	Clients   *ClientService
	Contracts *ContractService
	Events    *EventService
	Users     *UserService
}

func New(d Deps, hasher Hasher) *Services {
	return &Services{
		Clients:   NewClientService(d),
		Contracts: NewContractService(d),
		Events:    NewEventService(d),
		Users:     NewUserService(d, hasher),
	}
}

// Row is a listed record together with the edit affordance for the caller.
// Editable is a display hint; mutations are authorized again.
type Row[T any] struct {
	Item     T
	Editable bool
}

// ResultSet is a labeled group of rows returned by filters.
type ResultSet[T any] struct {
	Label string
	Rows  []Row[T]
}

// inTx runs fn in one transaction. Typed outcomes returned by fn roll back
// and pass through; anything else is a storage failure.
func (b base) inTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	err := b.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return b.storageFailure(ctx, op, err)
}

// storageFailure logs err, forwards it to the report sink and converts it.
func (b base) storageFailure(ctx context.Context, op string, err error) error {
	b.log.Error("storage failure", sl.Op(op), sl.Err(err))
	b.reporter.Report(ctx, report.New(report.StorageFailure, report.LevelError, "storage failure",
		map[string]any{"op": op, "error": err.Error()}))
	return apperr.Storage(op, err)
}

func (b base) notify(ctx context.Context, name, message string, fields map[string]any) {
	b.reporter.Report(ctx, report.New(name, report.LevelInfo, message, fields))
}

// load fetches a record by primary key, mapping a miss to NotFound.
func load[T any](tx *gorm.DB, op, entity string, id uint, preloads ...string) (*T, error) {
	var rec T
	q := tx
	for _, p := range preloads {
		q = q.Preload(p)
	}
	err := q.First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(op, entity, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: load %s: %w", op, entity, err)
	}
	return &rec, nil
}

// emailTaken reports whether another row of model already uses email.
func emailTaken(tx *gorm.DB, model any, email string, exceptID uint) (bool, error) {
	var count int64
	q := tx.Model(model).Where("LOWER(email) = LOWER(?)", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func duplicateEmail(op string) error {
	return apperr.InvalidInput(op, "email already in use", map[string]string{"email": "duplicate"})
}
