package services

import (
	"math"
	"time"

	"garden-cms/pkg/models"
)

const (
	day = 24 * time.Hour

	developingAfterDays = 90
	matureAfterDays     = 365
)

// Classify returns the lifecycle stage of art. An explicit override always
// wins; otherwise the stage follows the age of the article. A date that
// cannot be parsed counts as now.
func Classify(art models.Article, now time.Time) models.GrowthStage {
	if art.GrowthStage != "" {
		return art.GrowthStage
	}
	age := AgeInDays(art, now)
	switch {
	case age < developingAfterDays:
		return models.StageEarly
	case age < matureAfterDays:
		return models.StageDeveloping
	default:
		return models.StageMature
	}
}

// AgeInDays returns whole days elapsed between the article date and now.
func AgeInDays(art models.Article, now time.Time) int {
	published, ok := ParseDate(art.Date)
	if !ok {
		return 0
	}
	return int(math.Floor(float64(now.Sub(published)) / float64(day)))
}
