package tmpl

import (
	"context"
	"log/slog"
)

// Evaluator produces the value of a placeholder expression.
type Evaluator interface {
	Evaluate(ctx context.Context, source string) (any, error)
}

// EvaluatorFunc adapts a function to the [Evaluator] interface.
type EvaluatorFunc func(ctx context.Context, source string) (any, error)

// Evaluate calls f(ctx, source).
func (f EvaluatorFunc) Evaluate(ctx context.Context, source string) (any, error) {
	return f(ctx, source)
}

type indexKey struct{}

func withIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, indexKey{}, index)
}

// PlaceholderIndex returns the zero-based position, in source order, of
// the placeholder being evaluated. It reports false for contexts not
// passed to an [Evaluator] by this package.
func PlaceholderIndex(ctx context.Context) (int, bool) {
	index, ok := ctx.Value(indexKey{}).(int)

	return index, ok
}

// Slots returns an [Evaluator] that ignores placeholder expressions and
// yields values in order: the i-th placeholder receives values[i].
// Evaluating a placeholder with no corresponding value returns
// [ErrSlotCount].
func Slots(values ...any) Evaluator {
	return EvaluatorFunc(func(ctx context.Context, _ string) (any, error) {
		index, ok := PlaceholderIndex(ctx)
		if !ok || index >= len(values) {
			return nil, ErrSlotCount.With(
				slog.Int("slots", len(values)),
				slog.Int("index", index),
			)
		}

		return values[index], nil
	})
}

// RenderSlots renders source with the placeholders replaced, in order, by
// values.
func RenderSlots(ctx context.Context, source string, values ...any) (string, error) {
	return Render(ctx, source, Slots(values...))
}
