package questions

import "github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"

// DefaultCatalog returns the built-in trivia pool used when no database is
// configured.
func DefaultCatalog() []domain.Question {
	return []domain.Question{
		{
			ID:           "pubg-e1",
			Prompt:       "What is the maximum number of players in a classic PUBG match?",
			Options:      []string{"50", "80", "100", "120"},
			CorrectIndex: 2,
			Category:     domain.CategoryPUBG,
			Difficulty:   domain.DifficultyEasy,
		},
		{
			ID:           "pubg-e2",
			Prompt:       "Which item restores the most health instantly?",
			Options:      []string{"Bandage", "First Aid Kit", "Med Kit", "Energy Drink"},
			CorrectIndex: 2,
			Category:     domain.CategoryPUBG,
			Difficulty:   domain.DifficultyEasy,
		},
		{
			ID:           "pubg-e3",
			Prompt:       "What does the blue zone do?",
			Options:      []string{"Heals players", "Damages players outside it", "Spawns loot", "Disables vehicles"},
			CorrectIndex: 1,
			Category:     domain.CategoryPUBG,
			Difficulty:   domain.DifficultyEasy,
		},
		{
			ID:           "pubg-m1",
			Prompt:       "Which map was the first released in PUBG?",
			Options:      []string{"Miramar", "Erangel", "Sanhok", "Vikendi"},
			CorrectIndex: 1,
			Category:     domain.CategoryPUBG,
			Difficulty:   domain.DifficultyMedium,
		},
		{
			ID:           "pubg-m2",
			Prompt:       "Which ammo type does the AWM use?",
			Options:      []string{"7.62mm", "5.56mm", ".300 Magnum", ".45 ACP"},
			CorrectIndex: 2,
			Category:     domain.CategoryPUBG,
			Difficulty:   domain.DifficultyMedium,
		},
		{
			ID:           "pubg-h1",
			Prompt:       "In which year did PUBG leave early access on PC?",
			Options:      []string{"2016", "2017", "2018", "2019"},
			CorrectIndex: 1,
			Category:     domain.CategoryPUBG,
			Difficulty:   domain.DifficultyHard,
		},
		{
			ID:           "gaming-e1",
			Prompt:       "Which company created the game engine Unreal?",
			Options:      []string{"Unity", "Epic Games", "Valve", "id Software"},
			CorrectIndex: 1,
			Category:     domain.CategoryGaming,
			Difficulty:   domain.DifficultyEasy,
		},
		{
			ID:           "gaming-m1",
			Prompt:       "What does FPS stand for in shooter games?",
			Options:      []string{"Frames Per Shot", "First Person Shooter", "Fast Paced Strategy", "Full Player Sync"},
			CorrectIndex: 1,
			Category:     domain.CategoryGaming,
			Difficulty:   domain.DifficultyMedium,
		},
		{
			ID:           "esports-m1",
			Prompt:       "Which tournament is the largest annual Dota 2 event?",
			Options:      []string{"The International", "Worlds", "Major League", "Champions Cup"},
			CorrectIndex: 0,
			Category:     domain.CategoryEsports,
			Difficulty:   domain.DifficultyMedium,
		},
		{
			ID:           "general-e1",
			Prompt:       "How many continents are there on Earth?",
			Options:      []string{"5", "6", "7", "8"},
			CorrectIndex: 2,
			Category:     domain.CategoryGeneral,
			Difficulty:   domain.DifficultyEasy,
		},
		{
			ID:           "general-e2",
			Prompt:       "What is the chemical symbol for gold?",
			Options:      []string{"Go", "Gd", "Au", "Ag"},
			CorrectIndex: 2,
			Category:     domain.CategoryGeneral,
			Difficulty:   domain.DifficultyEasy,
		},
		{
			ID:           "general-h1",
			Prompt:       "Which planet has the most moons?",
			Options:      []string{"Jupiter", "Saturn", "Uranus", "Neptune"},
			CorrectIndex: 1,
			Category:     domain.CategoryGeneral,
			Difficulty:   domain.DifficultyHard,
		},
	}
}
