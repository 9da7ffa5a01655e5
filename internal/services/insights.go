package services

import (
	"context"
	"time"

	"github.com/reveriehq/reverie-backend/internal/apperrors"
	"github.com/reveriehq/reverie-backend/internal/database"
)

// MoodDayStat is one day on the mood timeline.
type MoodDayStat struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"average_score"`
	EntryCount   int     `json:"entry_count"`
}

// MoodInsights is the dashboard analytics payload.
type MoodInsights struct {
	Period       string        `json:"period"`
	TotalEntries int           `json:"total_entries"`
	AverageScore float64       `json:"average_score"`
	Timeline     []MoodDayStat `json:"timeline"`
}

// GetMoodInsights returns per-day average mood score and entry counts for the
// caller over the given period ("7d", "30d" or "90d").
func GetMoodInsights(ctx context.Context, sessionToken string, period string) (*MoodInsights, error) {
	user, err := ResolveUser(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	days := 30
	switch period {
	case "7d":
		days = 7
	case "", "30d":
		period = "30d"
	case "90d":
		days = 90
	default:
		return nil, apperrors.Validation("Period must be one of 7d, 30d, 90d")
	}

	from := time.Now().UTC().AddDate(0, 0, -days)

	insights := &MoodInsights{Period: period, Timeline: make([]MoodDayStat, 0)}

	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT (created_at)::date AS d, AVG(mood_score), COUNT(*)
		FROM entries
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY (created_at)::date
		ORDER BY d
	`, user.ID, from)
	if err != nil {
		return nil, apperrors.Internal("Failed to load mood insights", err)
	}
	defer rows.Close()

	var totalScore float64
	for rows.Next() {
		var day time.Time
		var stat MoodDayStat
		if err := rows.Scan(&day, &stat.AverageScore, &stat.EntryCount); err != nil {
			return nil, apperrors.Internal("Failed to load mood insights", err)
		}
		stat.Date = day.Format("2006-01-02")
		insights.Timeline = append(insights.Timeline, stat)
		insights.TotalEntries += stat.EntryCount
		totalScore += stat.AverageScore * float64(stat.EntryCount)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to load mood insights", err)
	}

	if insights.TotalEntries > 0 {
		insights.AverageScore = totalScore / float64(insights.TotalEntries)
	}
	return insights, nil
}
