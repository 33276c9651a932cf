package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"auditflow/domain/contracts"
	"auditflow/logging"
)

// PassRateReport aggregates completion outcomes for a filter.
type PassRateReport struct {
	TotalAudits int
	Passed      int
	Failed      int
	PassRate    float64 // 0-100, share of passed audits
	AvgPassPct  float64 // Mean of per-audit pass percentages
}

// TrendPoint is one period in a score trend.
type TrendPoint struct {
	Period     string // YYYY-MM
	Audits     int
	AvgPassPct float64
}

// LocationBenchmark compares one location against the filtered population.
type LocationBenchmark struct {
	LocationID string
	Audits     int
	AvgPassPct float64
	PassRate   float64
}

// ReportService rolls completed audits up into trends, pass rates, and
// comparative statistics. Aggregation here is deliberately simple filtering
// and averaging over scoring-engine outputs.
type ReportService interface {
	PassRate(ctx context.Context, locationID, templateID string, since time.Time) (*PassRateReport, error)
	ScoreTrend(ctx context.Context, locationID, templateID string, since time.Time) ([]TrendPoint, error)
	BenchmarkLocations(ctx context.Context, templateID string, since time.Time) ([]LocationBenchmark, error)
}

// ReportServiceImpl is the production implementation of ReportService.
type ReportServiceImpl struct {
	audits contracts.AuditRepository
	logger *logging.Logger
}

// NewReportService creates a new report service.
func NewReportService(audits contracts.AuditRepository) ReportService {
	return &ReportServiceImpl{
		audits: audits,
		logger: logging.Default().WithComponent("report_service"),
	}
}

// PassRate computes the pass rate and mean score for the filter.
func (s *ReportServiceImpl) PassRate(ctx context.Context, locationID, templateID string, since time.Time) (*PassRateReport, error) {
	summaries, err := s.audits.ListCompleted(ctx, locationID, templateID, since)
	if err != nil {
		return nil, fmt.Errorf("list completed audits: %w", err)
	}

	report := &PassRateReport{TotalAudits: len(summaries)}
	if len(summaries) == 0 {
		return report, nil
	}

	sum := 0
	for _, a := range summaries {
		if a.Passed {
			report.Passed++
		}
		sum += a.PassPct
	}
	report.Failed = report.TotalAudits - report.Passed
	report.PassRate = float64(report.Passed) / float64(report.TotalAudits) * 100
	report.AvgPassPct = float64(sum) / float64(report.TotalAudits)
	return report, nil
}

// ScoreTrend buckets completed audits by calendar month.
func (s *ReportServiceImpl) ScoreTrend(ctx context.Context, locationID, templateID string, since time.Time) ([]TrendPoint, error) {
	summaries, err := s.audits.ListCompleted(ctx, locationID, templateID, since)
	if err != nil {
		return nil, fmt.Errorf("list completed audits: %w", err)
	}

	type bucket struct {
		count int
		sum   int
	}
	buckets := map[string]*bucket{}
	for _, a := range summaries {
		period := a.CompletedAt.UTC().Format("2006-01")
		b, ok := buckets[period]
		if !ok {
			b = &bucket{}
			buckets[period] = b
		}
		b.count++
		b.sum += a.PassPct
	}

	points := make([]TrendPoint, 0, len(buckets))
	for period, b := range buckets {
		points = append(points, TrendPoint{
			Period:     period,
			Audits:     b.count,
			AvgPassPct: float64(b.sum) / float64(b.count),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })
	return points, nil
}

// BenchmarkLocations computes per-location averages for a template, sorted
// best first.
func (s *ReportServiceImpl) BenchmarkLocations(ctx context.Context, templateID string, since time.Time) ([]LocationBenchmark, error) {
	summaries, err := s.audits.ListCompleted(ctx, "", templateID, since)
	if err != nil {
		return nil, fmt.Errorf("list completed audits: %w", err)
	}

	type bucket struct {
		count  int
		sum    int
		passed int
	}
	buckets := map[string]*bucket{}
	for _, a := range summaries {
		b, ok := buckets[a.LocationID]
		if !ok {
			b = &bucket{}
			buckets[a.LocationID] = b
		}
		b.count++
		b.sum += a.PassPct
		if a.Passed {
			b.passed++
		}
	}

	benchmarks := make([]LocationBenchmark, 0, len(buckets))
	for locationID, b := range buckets {
		benchmarks = append(benchmarks, LocationBenchmark{
			LocationID: locationID,
			Audits:     b.count,
			AvgPassPct: float64(b.sum) / float64(b.count),
			PassRate:   float64(b.passed) / float64(b.count) * 100,
		})
	}
	sort.Slice(benchmarks, func(i, j int) bool {
		if benchmarks[i].AvgPassPct != benchmarks[j].AvgPassPct {
			return benchmarks[i].AvgPassPct > benchmarks[j].AvgPassPct
		}
		return benchmarks[i].LocationID < benchmarks[j].LocationID
	})
	return benchmarks, nil
}
