package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/guttosm/tracecalc/internal/domain/models"
	"github.com/guttosm/tracecalc/internal/logger"
	"github.com/guttosm/tracecalc/internal/tracing"
)

const loggerName = "calculator"

// ErrOverflow is returned when the sum does not fit in an int64.
var ErrOverflow = errors.New("integer overflow")

// Calculator defines the business logic behind POST /calculate.
// This decouples HTTP handlers from the arithmetic and its instrumentation.
type Calculator interface {
	// Validate reports whether numbers is non-empty and free of negatives.
	Validate(ctx context.Context, numbers []int64) bool
	// Aggregate computes total, average and count after the configured delay.
	Aggregate(ctx context.Context, numbers []int64) (*models.Calculation, error)
}

type calculator struct {
	delay time.Duration

	validate  func(context.Context, []int64) bool
	sum       func(context.Context, []int64) (int64, error)
	aggregate func(context.Context, []int64) (*models.Calculation, error)
}

// NewCalculator returns a Calculator whose steps are each traced as a span.
// delay is the simulated downstream latency Aggregate waits before computing.
func NewCalculator(delay time.Duration) Calculator {
	c := &calculator{delay: delay}
	c.validate = tracing.WrapValue("calculator.validate", validateInput, tracing.WithReturnValue())
	c.sum = tracing.Wrap("calculator.sum", calculateSum, tracing.WithReturnValue())
	c.aggregate = tracing.Wrap("calculator.aggregate", c.process, tracing.WithReturnValue())
	return c
}

func (c *calculator) Validate(ctx context.Context, numbers []int64) bool {
	return c.validate(ctx, numbers)
}

func (c *calculator) Aggregate(ctx context.Context, numbers []int64) (*models.Calculation, error) {
	return c.aggregate(ctx, numbers)
}

func validateInput(ctx context.Context, numbers []int64) bool {
	log := logger.NamedCtx(ctx, loggerName)
	log.Info().Msg("validating input data")

	if len(numbers) == 0 {
		log.Warn().Msg("empty input provided")
		return false
	}
	for i, n := range numbers {
		if n < 0 {
			log.Warn().Int("index", i).Int64("value", n).Msg("negative number found in input")
			return false
		}
	}

	log.Info().Msg("input validation passed")
	return true
}

func calculateSum(ctx context.Context, numbers []int64) (int64, error) {
	log := logger.NamedCtx(ctx, loggerName)
	log.Info().Int("count", len(numbers)).Msg("calculating sum")

	var total int64
	for _, n := range numbers {
		if (n > 0 && total > math.MaxInt64-n) || (n < 0 && total < math.MinInt64-n) {
			log.Error().Int64("partial", total).Int64("next", n).Msg("sum overflows int64")
			return 0, ErrOverflow
		}
		total += n
	}

	log.Info().Int64("total", total).Msg("sum calculated")
	return total, nil
}

func (c *calculator) process(ctx context.Context, numbers []int64) (*models.Calculation, error) {
	log := logger.NamedCtx(ctx, loggerName)
	log.Info().Dur("delay", c.delay).Msg("starting data processing")

	if err := wait(ctx, c.delay); err != nil {
		return nil, fmt.Errorf("processing interrupted: %w", err)
	}

	total, err := c.sum(ctx, numbers)
	if err != nil {
		return nil, err
	}

	var average int64
	if len(numbers) > 0 {
		average = total / int64(len(numbers))
	}
	result := &models.Calculation{Total: total, Average: average, Count: len(numbers)}

	log.Info().
		Int64("total", result.Total).
		Int64("average", result.Average).
		Int("count", result.Count).
		Msg("data processing completed")
	return result, nil
}

// wait blocks for d or until ctx is done, whichever comes first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
