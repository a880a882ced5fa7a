package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// Document number prefixes.
const (
	InvoicePrefix = "INV"
	BillPrefix    = "BILL"
)

// periodLayout renders the counter period as YYMM.
const periodLayout = "0601"

// NumberingService issues document numbers of the form PREFIX-YYMM-NNNN.
// Sequences restart every month and widen past 9999.
type NumberingService struct {
	counter ports.Counter
}

func NewNumberingService(counter ports.Counter) (*NumberingService, error) {
	if counter == nil {
		return nil, errors.New("numbering service: counter is required")
	}
	return &NumberingService{counter: counter}, nil
}

// Next reserves the next number for prefix in the month containing at.
func (s *NumberingService) Next(ctx context.Context, prefix string, at time.Time) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", domain.Invalid("number prefix is required")
	}

	period := at.UTC().Format(periodLayout)
	seq, err := s.counter.Increment(ctx, prefix+":"+period)
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, period, seq), nil
}
