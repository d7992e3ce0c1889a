package app

import "vitadash-reward-service/internal/domain"

// CategoryCatalog is the read-only metadata behind the dashboard's
// category cards.
func CategoryCatalog() []domain.CategoryInfo {
	return []domain.CategoryInfo{
		{
			Category:    domain.CategoryMath,
			Title:       "Mathematics",
			Description: "Test your mathematical skills with algebra, geometry, and arithmetic problems.",
			Difficulty:  "Medium",
			MaxReward:   25,
		},
		{
			Category:    domain.CategoryAptitude,
			Title:       "Aptitude",
			Description: "Challenge your logical reasoning and problem-solving abilities.",
			Difficulty:  "Hard",
			MaxReward:   25,
		},
		{
			Category:    domain.CategoryGrammar,
			Title:       "Grammar",
			Description: "Improve your language skills with grammar and vocabulary questions.",
			Difficulty:  "Easy",
			MaxReward:   25,
		},
		{
			Category:    domain.CategoryProgramming,
			Title:       "Programming",
			Description: "Test your coding knowledge across various programming languages.",
			Difficulty:  "Hard",
			MaxReward:   25,
		},
	}
}
