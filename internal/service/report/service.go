// Package report composes commission statistics into downloadable
// summary and final-act documents.
package report

import (
	"context"
	"fmt"

	"github.com/profmed/crm-api/internal/excel"
	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/pdf"
	"github.com/profmed/crm-api/internal/repository"
)

type expertiseStats interface {
	FinalActStats(ctx context.Context, filter repository.ExpertiseFilter) (*model.FinalActStats, error)
	HealthPlanItems(ctx context.Context, filter repository.ExpertiseFilter) ([]model.HealthPlanItem, error)
}

type Service struct {
	expertise expertiseStats
}

func NewService(expertise expertiseStats) *Service {
	return &Service{expertise: expertise}
}

// Period describes the report window shown in document headers
type Period struct {
	From *model.Date
	To   *model.Date
}

func (p Period) filter() repository.ExpertiseFilter {
	return repository.ExpertiseFilter{From: p.From, To: p.To}
}

func (p Period) label() string {
	switch {
	case p.From != nil && p.To != nil:
		return fmt.Sprintf("с %s по %s", p.From.Format("02.01.2006"), p.To.Format("02.01.2006"))
	case p.From != nil:
		return "с " + p.From.Format("02.01.2006")
	case p.To != nil:
		return "по " + p.To.Format("02.01.2006")
	default:
		return ""
	}
}

func (s *Service) SummaryPDF(ctx context.Context, period Period) ([]byte, error) {
	stats, err := s.expertise.FinalActStats(ctx, period.filter())
	if err != nil {
		return nil, err
	}
	return pdf.BuildSummaryReport(stats, period.label())
}

func (s *Service) SummaryExcel(ctx context.Context, period Period) ([]byte, error) {
	stats, err := s.expertise.FinalActStats(ctx, period.filter())
	if err != nil {
		return nil, err
	}
	return excel.BuildSummaryReport(stats, period.label())
}

func (s *Service) FinalActPDF(ctx context.Context, period Period) ([]byte, error) {
	stats, items, err := s.finalActData(ctx, period)
	if err != nil {
		return nil, err
	}
	return pdf.BuildFinalAct(stats, items, period.label())
}

func (s *Service) FinalActExcel(ctx context.Context, period Period) ([]byte, error) {
	stats, items, err := s.finalActData(ctx, period)
	if err != nil {
		return nil, err
	}
	return excel.BuildFinalAct(stats, items, period.label())
}

func (s *Service) finalActData(ctx context.Context, period Period) (*model.FinalActStats, []model.HealthPlanItem, error) {
	stats, err := s.expertise.FinalActStats(ctx, period.filter())
	if err != nil {
		return nil, nil, err
	}
	items, err := s.expertise.HealthPlanItems(ctx, period.filter())
	if err != nil {
		return nil, nil, err
	}
	return stats, items, nil
}
