package questions

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// Loader fetches the question pool from a backing store (static catalog,
// Postgres, etc).
type Loader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// Bank selects quiz questions from a loader, applying category and difficulty
// filters with a shuffled draw.
type Bank struct {
	source Loader

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBank(source Loader) *Bank {
	return &Bank{
		source: source,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewBankWithRand is test-only for deterministic draws.
func NewBankWithRand(source Loader, rnd *rand.Rand) *Bank {
	return &Bank{source: source, rnd: rnd}
}

// Select returns up to count questions matching the filters. An empty filter
// result falls back to the unfiltered pool rather than failing the quiz.
func (b *Bank) Select(ctx context.Context, category domain.Category, difficulty domain.Difficulty, count int) ([]domain.Question, error) {
	pool, err := b.source.LoadQuestions(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoQuestionsAvailable
	}

	byCategory := filter(pool, func(q domain.Question) bool { return q.Category == category })
	if len(byCategory) == 0 {
		log.Printf("question bank: no questions for category %q, falling back to full pool", category)
		byCategory = pool
	}

	byDifficulty := filter(byCategory, func(q domain.Question) bool { return q.Difficulty == difficulty })
	if len(byDifficulty) == 0 {
		log.Printf("question bank: no %q questions for category %q, ignoring difficulty", difficulty, category)
		byDifficulty = byCategory
	}

	picked := make([]domain.Question, len(byDifficulty))
	copy(picked, byDifficulty)

	b.mu.Lock()
	for i := len(picked) - 1; i > 0; i-- {
		j := b.rnd.Intn(i + 1)
		picked[i], picked[j] = picked[j], picked[i]
	}
	b.mu.Unlock()

	if count < len(picked) {
		picked = picked[:count]
	}
	return picked, nil
}

func filter(pool []domain.Question, keep func(domain.Question) bool) []domain.Question {
	var out []domain.Question
	for _, q := range pool {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

// StaticLoader serves a fixed in-memory pool (useful for tests/demos).
type StaticLoader struct {
	questions []domain.Question
}

func NewStaticLoader(questions []domain.Question) *StaticLoader {
	return &StaticLoader{questions: questions}
}

func (l *StaticLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return l.questions, nil
}
