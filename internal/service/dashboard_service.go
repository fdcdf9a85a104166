package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uniarchive/archive-api/internal/models"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
)

type dashboardRecordCounter interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.RecordStatus) (int, error)
	CountUploadedSince(ctx context.Context, since time.Time) (int, error)
}

type dashboardLoanCounter interface {
	CountOpen(ctx context.Context) (int, error)
}

type activityDigester interface {
	Digest(ctx context.Context, n int) (string, error)
}

// DashboardSummary is the role-scoped home view. Fields not visible to the
// requesting role stay nil and are omitted from the response.
type DashboardSummary struct {
	Role             models.UserRole `json:"role"`
	TotalRecords     *int            `json:"total_records,omitempty"`
	AvailableRecords *int            `json:"available_records,omitempty"`
	OpenLoans        *int            `json:"open_loans,omitempty"`
	NewThisMonth     *int            `json:"new_this_month,omitempty"`
	RecentActivity   string          `json:"recent_activity,omitempty"`
}

// DashboardServiceConfig holds cache and digest knobs.
type DashboardServiceConfig struct {
	CacheTTL       time.Duration
	RecentActivity int
}

// DashboardService aggregates home page statistics per role.
type DashboardService struct {
	records dashboardRecordCounter
	loans   dashboardLoanCounter
	digest  activityDigester
	cache   *CacheService
	config  DashboardServiceConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService creates an instance of DashboardService.
func NewDashboardService(records dashboardRecordCounter, loans dashboardLoanCounter, digest activityDigester, cache *CacheService, config DashboardServiceConfig, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	if config.RecentActivity <= 0 {
		config.RecentActivity = 3
	}
	return &DashboardService{records: records, loans: loans, digest: digest, cache: cache, config: config, logger: logger, now: time.Now}
}

// Summary builds the home view for the actor's role. Results are cached
// per role and invalidated whenever the catalog or the loan ledger changes.
func (s *DashboardService) Summary(ctx context.Context, role models.UserRole) (*DashboardSummary, error) {
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("unknown role %q", role))
	}

	cacheKey := fmt.Sprintf("dashboard:%s", role)
	var cached DashboardSummary
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	summary, err := s.build(ctx, role)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, summary, s.config.CacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard summary", zap.String("role", string(role)), zap.Error(err))
	}

	return summary, nil
}

func (s *DashboardService) build(ctx context.Context, role models.UserRole) (*DashboardSummary, error) {
	summary := &DashboardSummary{Role: role}

	total, err := s.records.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count records")
	}
	summary.TotalRecords = &total

	if role == models.RoleLecturer {
		return summary, nil
	}

	openLoans, err := s.loans.CountOpen(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count open loans")
	}
	summary.OpenLoans = &openLoans

	newThisMonth, err := s.records.CountUploadedSince(ctx, monthStart(s.now().UTC()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count new records")
	}
	summary.NewThisMonth = &newThisMonth

	if role == models.RoleSecretary {
		summary.TotalRecords = nil
		return summary, nil
	}

	available, err := s.records.CountByStatus(ctx, models.StatusAvailable)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count available records")
	}
	summary.AvailableRecords = &available

	digest, err := s.digest.Digest(ctx, s.config.RecentActivity)
	if err != nil {
		s.logger.Warn("failed to load recent activity digest", zap.Error(err))
	} else {
		summary.RecentActivity = digest
	}

	return summary, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
