package transfer

type MetricTrend struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	TrendPct float64 `json:"trend_pct"`
}

type WebsiteAnalytics struct {
	PropertyID  string      `json:"property_id"`
	ActiveUsers MetricTrend `json:"active_users"`
	Sessions    MetricTrend `json:"sessions"`
}

type BusinessProfileAnalytics struct {
	Locations      int         `json:"locations"`
	WebsiteClicks  MetricTrend `json:"website_clicks"`
	CallClicks     MetricTrend `json:"call_clicks"`
	DirectionClick MetricTrend `json:"direction_requests"`
}

type Dashboard struct {
	Days            int                       `json:"days"`
	Website         *WebsiteAnalytics         `json:"website,omitempty"`
	BusinessProfile *BusinessProfileAnalytics `json:"business_profile,omitempty"`
	Errors          map[string]string         `json:"errors,omitempty"`
}
