package reports

import (
	"context"
	"log/slog"
	"time"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) Finance(ctx context.Context, companyID string) (FinanceReport, error) {
	totals, err := s.Store.TeamTotals(ctx, companyID)
	if err != nil {
		return FinanceReport{}, err
	}
	return BuildFinanceReport(totals), nil
}

func (s *Service) FinancePDF(ctx context.Context, companyID string) ([]byte, error) {
	report, err := s.Finance(ctx, companyID)
	if err != nil {
		return nil, err
	}
	name, err := s.Store.CompanyName(ctx, companyID)
	if err != nil {
		slog.Warn("company name lookup failed", "companyId", companyID, "err", err)
	}
	return RenderFinancePDF(name, report, time.Now())
}
