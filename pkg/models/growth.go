package models

import "strings"

// GrowthStage is the lifecycle label of an article.
type GrowthStage string

const (
	StageEarly      GrowthStage = "early"
	StageDeveloping GrowthStage = "developing"
	StageMature     GrowthStage = "mature"
)

// GrowthStages lists every stage from youngest to oldest.
var GrowthStages = []GrowthStage{StageEarly, StageDeveloping, StageMature}

// ParseGrowthStage accepts the stage names and the older seed/sapling/old-growth aliases.
func ParseGrowthStage(s string) (GrowthStage, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "early", "seed":
		return StageEarly, true
	case "developing", "sapling":
		return StageDeveloping, true
	case "mature", "old-growth":
		return StageMature, true
	}
	return "", false
}

func (g GrowthStage) Valid() bool {
	switch g {
	case StageEarly, StageDeveloping, StageMature:
		return true
	}
	return false
}

func (g GrowthStage) Label() string {
	switch g {
	case StageEarly:
		return "Seeds"
	case StageDeveloping:
		return "Saplings"
	case StageMature:
		return "Old Growth"
	}
	return ""
}

func (g GrowthStage) Description() string {
	switch g {
	case StageEarly:
		return "Recent insights and emerging thoughts"
	case StageDeveloping:
		return "Developing ideas and growing perspectives"
	case StageMature:
		return "Strategic whitepapers and timeless wisdom"
	}
	return ""
}
