package http

import (
	"context"

	"adpulse/internal/dataset"
	"adpulse/internal/files"
	"adpulse/internal/services"
)

// DashboardServiceInterface defines the dashboard operations the HTTP
// layer depends on. Kept as an interface so handler tests can stub it.
type DashboardServiceInterface interface {
	Reload(ctx context.Context) error
	Overview(ctx context.Context, f dataset.Filter) (*services.Overview, error)
	Daily(ctx context.Context, f dataset.Filter) (*services.DailySeries, error)
	Channels(ctx context.Context, f dataset.Filter) ([]dataset.ChannelSummaryRow, error)
	Campaigns(ctx context.Context, f dataset.Filter, limit int) ([]dataset.CampaignRow, error)
	BusinessJoin(ctx context.Context, f dataset.Filter) ([]dataset.BusinessJoinRow, error)
	FilterOptions(ctx context.Context) (*services.FilterOptions, error)
	DataFiles(ctx context.Context) ([]files.FileInfo, error)
	ExportDaily(ctx context.Context, f dataset.Filter) ([]dataset.DailyChannelRow, error)
}
