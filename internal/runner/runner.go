package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "streaming-db/internal/errors"
	"streaming-db/internal/result"
)

// Operation is one CLI operation with its arguments already bound.
type Operation struct {
	Name string
	Run  func(ctx context.Context) (result.Result, error)
}

// Mutation wraps an operation that reports only success or failure.
func Mutation(name string, fn func(ctx context.Context) error) Operation {
	return Operation{
		Name: name,
		Run: func(ctx context.Context) (result.Result, error) {
			if err := fn(ctx); err != nil {
				return result.Result{}, err
			}
			return result.Success(), nil
		},
	}
}

// Query wraps an operation that returns rows.
func Query[T result.Row](name string, fn func(ctx context.Context) ([]T, error)) Operation {
	return Operation{
		Name: name,
		Run: func(ctx context.Context) (result.Result, error) {
			rows, err := fn(ctx)
			if err != nil {
				return result.Result{}, err
			}
			return result.FromRows(rows), nil
		},
	}
}

type Runner struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger.Named("runner")}
}

// Run executes op and folds its outcome into a Result. Errors and panics
// become failures and are logged, never returned.
func (r *Runner) Run(ctx context.Context, op Operation) (res result.Result) {
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			res = result.Failure(apperrors.Internal("panic", fmt.Errorf("%v", p)))
			r.logger.Error("Operation panicked",
				zap.String("operation", op.Name),
				zap.Any("panic", p),
				zap.Stack("stack"))
		}
	}()

	res, err := op.Run(ctx)
	if err != nil {
		r.logger.Warn("Operation failed",
			zap.String("operation", op.Name),
			zap.String("kind", string(apperrors.TypeOf(err))),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return result.Failure(err)
	}

	r.logger.Debug("Operation finished",
		zap.String("operation", op.Name),
		zap.Stringer("result", res.Kind),
		zap.Int("rows", len(res.Rows)),
		zap.Duration("elapsed", time.Since(start)))
	return res
}
