package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"adpulse/internal/config"
	"adpulse/internal/dataset"
	"adpulse/internal/files"
	"adpulse/internal/infrastructure"
)

// DashboardService owns the consolidated marketing dataset and answers
// every dashboard query from it. The dataset is immutable once loaded;
// Reload swaps it wholesale, so queries never observe a partial load.
type DashboardService struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *infrastructure.Metrics

	mu sync.RWMutex
	ds *dataset.Dataset
}

// NewDashboardService creates a dashboard service. The dataset is not
// loaded yet; call Reload once during startup.
func NewDashboardService(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.Metrics) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DashboardService{
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "dashboard_service")),
		metrics: metrics,
	}
}

// Reload re-reads every configured CSV and replaces the dataset. Malformed
// input fails the reload and keeps the previous dataset in place.
func (s *DashboardService) Reload(ctx context.Context) error {
	channels := make([]dataset.ChannelFile, 0, len(s.cfg.Data.Channels))
	for _, name := range s.cfg.Data.Channels {
		channels = append(channels, dataset.ChannelFile{
			Channel: name,
			Path:    s.cfg.ChannelPath(name),
		})
	}

	s.logger.InfoContext(ctx, "loading dataset",
		slog.Int("channel_count", len(channels)),
		slog.String("business_file", s.cfg.BusinessPath()))

	ds, err := dataset.Load(channels, s.cfg.BusinessPath(), s.logger)
	if err != nil {
		if s.metrics != nil {
			s.metrics.DatasetLoadsTotal.WithLabelValues("error").Inc()
		}
		s.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("error", err.Error()))
		return err
	}

	s.mu.Lock()
	s.ds = ds
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.DatasetLoadsTotal.WithLabelValues("success").Inc()
		s.metrics.DatasetRows.Set(float64(len(ds.Records)))
	}

	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.Int("marketing_rows", len(ds.Records)),
		slog.Int("business_rows", len(ds.Business)))

	return nil
}

// current returns the loaded dataset or ErrDatasetNotLoaded.
func (s *DashboardService) current() (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.ds, nil
}

// Loaded reports whether a dataset is available.
func (s *DashboardService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds != nil
}

// Overview holds the KPI card values for the current filters.
type Overview struct {
	TotalSpend        float64        `json:"total_spend"`
	AttributedRevenue float64        `json:"attributed_revenue"`
	BusinessRevenue   float64        `json:"business_revenue"`
	TotalImpressions  int64          `json:"total_impressions"`
	TotalClicks       int64          `json:"total_clicks"`
	TotalConversions  int64          `json:"total_conversions"`
	TotalOrders       int64          `json:"total_orders"`
	KPI               dataset.KPISet `json:"kpi"`
	MarketingRows     int            `json:"marketing_rows"`
	BusinessRows      int            `json:"business_rows"`
}

// Overview computes the KPI cards from the filtered table.
func (s *DashboardService) Overview(ctx context.Context, f dataset.Filter) (*Overview, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}

	records := f.Apply(ds.Records)
	business := f.ApplyBusiness(ds.Business)

	out := &Overview{
		MarketingRows: len(records),
		BusinessRows:  len(business),
	}
	for _, r := range records {
		out.TotalSpend += r.Spend
		out.AttributedRevenue += r.Revenue
		out.TotalImpressions += r.Impressions
		out.TotalClicks += r.Clicks
		out.TotalConversions += r.Conversions
	}
	for _, b := range business {
		out.BusinessRevenue += b.Revenue
		out.TotalOrders += b.Orders
	}
	out.KPI = dataset.ComputeKPIs(out.TotalImpressions, out.TotalClicks, out.TotalConversions, out.TotalSpend, out.AttributedRevenue)

	s.logger.DebugContext(ctx, "overview computed",
		slog.Int("marketing_rows", out.MarketingRows),
		slog.Int("business_rows", out.BusinessRows))

	return out, nil
}

// DailySeries bundles the per-channel and total daily rollups.
type DailySeries struct {
	Channels []dataset.DailyChannelRow `json:"channels"`
	Total    []dataset.DailyTotalRow   `json:"total"`
}

// Daily returns the daily per-channel and total series for the filters.
func (s *DashboardService) Daily(ctx context.Context, f dataset.Filter) (*DailySeries, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}

	records := f.Apply(ds.Records)
	return &DailySeries{
		Channels: dataset.AggregateDailyChannel(records),
		Total:    dataset.AggregateDailyTotal(records),
	}, nil
}

// Channels returns the per-channel summary table for the filters.
func (s *DashboardService) Channels(ctx context.Context, f dataset.Filter) ([]dataset.ChannelSummaryRow, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}

	rows := dataset.SummarizeChannels(f.Apply(ds.Records))
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

// Campaigns returns campaign performance sorted by ROAS. limit <= 0
// returns all campaigns.
func (s *DashboardService) Campaigns(ctx context.Context, f dataset.Filter, limit int) ([]dataset.CampaignRow, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}

	return dataset.CampaignPerformance(f.Apply(ds.Records), limit), nil
}

// BusinessJoin returns the business outcomes joined with daily marketing
// totals, including the 7-day rolling columns.
func (s *DashboardService) BusinessJoin(ctx context.Context, f dataset.Filter) ([]dataset.BusinessJoinRow, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}

	return dataset.JoinBusiness(f.ApplyBusiness(ds.Business), f.Apply(ds.Records)), nil
}

// FilterOptions describes the values the UI can filter on.
type FilterOptions struct {
	Channels []string   `json:"channels"`
	States   []string   `json:"states"`
	MinDate  *time.Time `json:"min_date,omitempty"`
	MaxDate  *time.Time `json:"max_date,omitempty"`
	LoadedAt time.Time  `json:"loaded_at"`
}

// FilterOptions returns the available channels, states and date bounds.
func (s *DashboardService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}

	opts := &FilterOptions{
		Channels: ds.Channels(),
		States:   ds.States(),
		LoadedAt: ds.LoadedAt,
	}
	if min, max, ok := ds.DateBounds(); ok {
		opts.MinDate = &min
		opts.MaxDate = &max
	}
	return opts, nil
}

// DataFiles lists the CSV inputs in the configured data directory,
// including configured files that are missing on disk.
func (s *DashboardService) DataFiles(ctx context.Context) ([]files.FileInfo, error) {
	return files.NewDiscovery(s.cfg, s.logger).ListInputs()
}

// ExportDaily returns the filtered daily-channel table for export.
func (s *DashboardService) ExportDaily(ctx context.Context, f dataset.Filter) ([]dataset.DailyChannelRow, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}

	rows := dataset.AggregateDailyChannel(f.Apply(ds.Records))
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}
