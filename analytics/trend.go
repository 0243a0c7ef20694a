// Package analytics holds the dashboard's derived-metric computations.
package analytics

import "math"

// Trend is a signed percentage change between two time windows.
type Trend struct {
	Value      int  `json:"value"`
	IsPositive bool `json:"isPositive"`
}

// ViewsTrend compares the views gathered in the recent window against the
// previous one. A zero previous window with nonzero recent views reads as
// +100% ("new activity from nothing"); both zero means no trend at all,
// reported as nil.
func ViewsTrend(recentViews, previousViews int64) *Trend {
	if previousViews > 0 {
		change := (float64(recentViews-previousViews) / float64(previousViews)) * 100
		return &Trend{
			Value:      int(math.Round(math.Abs(change))),
			IsPositive: change >= 0,
		}
	}
	if recentViews > 0 {
		return &Trend{Value: 100, IsPositive: true}
	}
	return nil
}
