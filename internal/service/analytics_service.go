package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/transfer"
	"github.com/maheshrc27/contentflow/pkg/utils"
	"golang.org/x/oauth2"
	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/businessprofileperformance/v1"
	"google.golang.org/api/option"
)

const (
	defaultDashboardDays = 28
	maxDashboardDays     = 90
)

type AnalyticsService interface {
	Dashboard(ctx context.Context, organizationID string, days int) (*transfer.Dashboard, error)
}

type analyticsService struct {
	log     *slog.Logger
	gc      repository.GoogleConnectionRepository
	cipher  *utils.TokenCipher
	oauth   *oauth2.Config
	options []option.ClientOption
	now     func() time.Time
}

// NewAnalyticsService reads Google Analytics and Business Profile metrics for
// an organization's Google connection. Extra client options are passed to
// both Google API clients.
func NewAnalyticsService(
	log *slog.Logger,
	gc repository.GoogleConnectionRepository,
	cipher *utils.TokenCipher,
	oauth *oauth2.Config,
	options ...option.ClientOption) AnalyticsService {
	return &analyticsService{
		log:     log,
		gc:      gc,
		cipher:  cipher,
		oauth:   oauth,
		options: options,
		now:     time.Now,
	}
}

type dateWindow struct {
	start time.Time
	end   time.Time
}

func (w dateWindow) gaRange() *analyticsdata.DateRange {
	return &analyticsdata.DateRange{
		StartDate: w.start.Format(time.DateOnly),
		EndDate:   w.end.Format(time.DateOnly),
	}
}

// windows returns the last `days` full days and the same span before it.
func windows(now time.Time, days int) (current, previous dateWindow) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	current = dateWindow{start: today.AddDate(0, 0, -days), end: today.AddDate(0, 0, -1)}
	previous = dateWindow{start: today.AddDate(0, 0, -2*days), end: today.AddDate(0, 0, -days-1)}
	return current, previous
}

func (s *analyticsService) Dashboard(ctx context.Context, organizationID string, days int) (*transfer.Dashboard, error) {
	if days <= 0 {
		days = defaultDashboardDays
	}
	if days > maxDashboardDays {
		days = maxDashboardDays
	}

	conn, err := s.gc.GetByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("error loading google connection: %w", err)
	}
	if conn == nil {
		return nil, fmt.Errorf("%w: no google account connected", ErrNotFound)
	}

	accessToken, err := s.cipher.Decrypt(conn.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("error decrypting access token: %w", err)
	}
	token := &oauth2.Token{AccessToken: accessToken, Expiry: conn.TokenExpiresAt}
	if conn.RefreshToken != "" {
		if token.RefreshToken, err = s.cipher.Decrypt(conn.RefreshToken); err != nil {
			return nil, fmt.Errorf("error decrypting refresh token: %w", err)
		}
	}

	locations, err := s.gc.ListLocations(ctx, conn.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading locations: %w", err)
	}

	opts := append([]option.ClientOption{option.WithTokenSource(s.oauth.TokenSource(ctx, token))}, s.options...)
	current, previous := windows(s.now(), days)

	dashboard := &transfer.Dashboard{Days: days, Errors: map[string]string{}}
	var mu sync.Mutex
	var wg sync.WaitGroup

	if conn.GAPropertyID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			website, err := s.website(ctx, opts, conn.GAPropertyID, current, previous)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn("google analytics fetch failed", "organization_id", organizationID, "error", err.Error())
				dashboard.Errors["website"] = err.Error()
				return
			}
			dashboard.Website = website
		}()
	}

	if len(locations) > 0 {
		locationIDs := make([]string, 0, len(locations))
		for _, l := range locations {
			locationIDs = append(locationIDs, l.LocationID)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			profile, err := s.businessProfile(ctx, opts, locationIDs, current, previous)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn("business profile fetch failed", "organization_id", organizationID, "error", err.Error())
				dashboard.Errors["business_profile"] = err.Error()
				return
			}
			dashboard.BusinessProfile = profile
		}()
	}

	wg.Wait()

	if len(dashboard.Errors) == 0 {
		dashboard.Errors = nil
	}
	return dashboard, nil
}

func (s *analyticsService) website(ctx context.Context, opts []option.ClientOption, propertyID string, current, previous dateWindow) (*transfer.WebsiteAnalytics, error) {
	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating analytics client: %w", err)
	}

	cur, err := runTotals(ctx, svc, propertyID, current)
	if err != nil {
		return nil, err
	}
	prev, err := runTotals(ctx, svc, propertyID, previous)
	if err != nil {
		return nil, err
	}

	return &transfer.WebsiteAnalytics{
		PropertyID:  propertyID,
		ActiveUsers: trend(cur[0], prev[0]),
		Sessions:    trend(cur[1], prev[1]),
	}, nil
}

// runTotals returns activeUsers and sessions for one window.
func runTotals(ctx context.Context, svc *analyticsdata.Service, propertyID string, w dateWindow) ([2]float64, error) {
	var totals [2]float64

	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{w.gaRange()},
		Metrics: []*analyticsdata.Metric{
			{Name: "activeUsers"},
			{Name: "sessions"},
		},
	}
	resp, err := svc.Properties.RunReport("properties/"+propertyID, req).Context(ctx).Do()
	if err != nil {
		return totals, fmt.Errorf("error running analytics report: %w", err)
	}

	for _, row := range resp.Rows {
		for i, v := range row.MetricValues {
			if i >= len(totals) {
				break
			}
			n, err := strconv.ParseFloat(v.Value, 64)
			if err != nil {
				return totals, fmt.Errorf("error parsing metric value %q: %w", v.Value, err)
			}
			totals[i] += n
		}
	}
	return totals, nil
}

var profileMetrics = []string{"WEBSITE_CLICKS", "CALL_CLICKS", "BUSINESS_DIRECTION_REQUESTS"}

func (s *analyticsService) businessProfile(ctx context.Context, opts []option.ClientOption, locationIDs []string, current, previous dateWindow) (*transfer.BusinessProfileAnalytics, error) {
	svc, err := businessprofileperformance.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating business profile client: %w", err)
	}

	cur := make(map[string]float64, len(profileMetrics))
	prev := make(map[string]float64, len(profileMetrics))
	for _, loc := range locationIDs {
		for _, metric := range profileMetrics {
			c, err := dailyMetricSum(ctx, svc, loc, metric, current)
			if err != nil {
				return nil, err
			}
			p, err := dailyMetricSum(ctx, svc, loc, metric, previous)
			if err != nil {
				return nil, err
			}
			cur[metric] += c
			prev[metric] += p
		}
	}

	return &transfer.BusinessProfileAnalytics{
		Locations:      len(locationIDs),
		WebsiteClicks:  trend(cur["WEBSITE_CLICKS"], prev["WEBSITE_CLICKS"]),
		CallClicks:     trend(cur["CALL_CLICKS"], prev["CALL_CLICKS"]),
		DirectionClick: trend(cur["BUSINESS_DIRECTION_REQUESTS"], prev["BUSINESS_DIRECTION_REQUESTS"]),
	}, nil
}

func dailyMetricSum(ctx context.Context, svc *businessprofileperformance.Service, locationID, metric string, w dateWindow) (float64, error) {
	resp, err := svc.Locations.GetDailyMetricsTimeSeries("locations/"+locationID).
		DailyMetric(metric).
		DailyRangeStartDateYear(int64(w.start.Year())).
		DailyRangeStartDateMonth(int64(w.start.Month())).
		DailyRangeStartDateDay(int64(w.start.Day())).
		DailyRangeEndDateYear(int64(w.end.Year())).
		DailyRangeEndDateMonth(int64(w.end.Month())).
		DailyRangeEndDateDay(int64(w.end.Day())).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("error fetching %s for location %s: %w", metric, locationID, err)
	}

	var sum float64
	if resp.TimeSeries != nil {
		for _, dv := range resp.TimeSeries.DatedValues {
			sum += float64(dv.Value)
		}
	}
	return sum, nil
}

// trend is the percentage change from previous to current, rounded to one
// decimal. It is 0 when there is no previous value to compare with.
func trend(current, previous float64) transfer.MetricTrend {
	t := transfer.MetricTrend{Current: current, Previous: previous}
	if previous != 0 {
		t.TrendPct = math.Round((current-previous)/previous*1000) / 10
	}
	return t
}
