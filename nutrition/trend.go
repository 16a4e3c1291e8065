package nutrition

import (
	"sort"
	"time"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

const (
	trendWindow    = 7
	trendThreshold = 5.0
)

const (
	insightInsufficient = "Insufficient data for trend analysis"
	adviceInsufficient  = "Continue logging meals to get better insights"
	insightImproving    = "Your molecular balance score is improving!"
	adviceImproving     = "Keep up the great work with your current nutrition plan"
	insightDeclining    = "Your molecular balance score has decreased recently"
	adviceDeclining     = "Consider reviewing your meal choices and increasing nutrient-dense foods"
	insightStable       = "Your nutrition balance has been stable"
	adviceStable        = "Try adding more variety to optimize your nutrient intake"
)

// TrendAnalysis classifies a score series.
type TrendAnalysis struct {
	Trend           Trend    `json:"trend"`
	RecentAverage   float64  `json:"recent_average"`
	OlderAverage    float64  `json:"older_average"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// AnalyzeTrend compares the mean of the last seven scores against the seven
// before them. Without a full prior window the older mean equals the recent
// one, so short series always read as stable.
func AnalyzeTrend(series []ProgressPoint) TrendAnalysis {
	if len(series) < 2 {
		return TrendAnalysis{
			Trend:           TrendStable,
			Insights:        []string{insightInsufficient},
			Recommendations: []string{adviceInsufficient},
		}
	}

	points := make([]ProgressPoint, len(series))
	copy(points, series)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	recentStart := max(0, len(points)-trendWindow)
	recent := mean(points[recentStart:])

	older := recent
	if recentStart >= trendWindow {
		older = mean(points[recentStart-trendWindow : recentStart])
	}

	out := TrendAnalysis{RecentAverage: recent, OlderAverage: older}
	switch {
	case recent > older+trendThreshold:
		out.Trend = TrendImproving
		out.Insights = []string{insightImproving}
		out.Recommendations = []string{adviceImproving}
	case recent < older-trendThreshold:
		out.Trend = TrendDeclining
		out.Insights = []string{insightDeclining}
		out.Recommendations = []string{adviceDeclining}
	default:
		out.Trend = TrendStable
		out.Insights = []string{insightStable}
		out.Recommendations = []string{adviceStable}
	}
	return out
}

// ProgressSeries keeps the points that fall within the `days` days ending at
// ref (inclusive), oldest first and at most one per day. Days without a
// stored score are left out rather than counted as zero.
func ProgressSeries(points []ProgressPoint, ref time.Time, days int) []ProgressPoint {
	if days <= 0 {
		return []ProgressPoint{}
	}
	end := DayStart(ref)
	start := end.AddDate(0, 0, -(days - 1))

	byDay := make(map[string]ProgressPoint, len(points))
	for _, p := range points {
		byDay[DayKey(p.Date)] = p
	}

	out := []ProgressPoint{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if p, ok := byDay[DayKey(d)]; ok {
			out = append(out, ProgressPoint{Date: d, BalanceScore: p.BalanceScore})
		}
	}
	return out
}

// DayStart truncates t to midnight in its own location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey formats t as YYYY-MM-DD.
func DayKey(t time.Time) string { return t.Format("2006-01-02") }

func mean(points []ProgressPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += float64(p.BalanceScore)
	}
	return sum / float64(len(points))
}
