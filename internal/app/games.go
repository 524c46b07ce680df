package app

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// Game type tags. Each maps to one Logic in builtinLogics.
const (
	GameTypeReaction = "reaction"
	GameTypeTyping   = "typing"
	GameTypeMath     = "math"
	GameTypeMemory   = "memory"
	GameTypeLootbox  = "lootbox"
	GameTypeAirdrop  = "airdrop"
)

func builtinLogics() map[string]Logic {
	return map[string]Logic{
		GameTypeReaction: &reactionLogic{},
		GameTypeTyping:   &typingLogic{},
		GameTypeMath:     &mathLogic{},
		GameTypeMemory:   &memoryLogic{},
		GameTypeLootbox:  &lootboxLogic{},
		GameTypeAirdrop:  &airdropLogic{},
	}
}

// --- reaction ---
// waiting -> armed(random 3-8s delay) -> signaled -> closed (10s window).
// Latency is recorded for every responder; scores are settled at session end
// so the fastest press wins regardless of end order.

type reactionState struct {
	signalAt  time.Time
	closesAt  time.Time
	first     string
	latencies map[string]time.Duration
}

type reactionLogic struct{}

func (reactionLogic) Init(s *GameSession, rnd *rand.Rand) {
	delay := 3*time.Second + time.Duration(rnd.Int63n(int64(5*time.Second)))
	signalAt := s.startedAt.Add(delay)
	s.state = &reactionState{
		signalAt:  signalAt,
		closesAt:  signalAt.Add(10 * time.Second),
		latencies: make(map[string]time.Duration),
	}
}

func (reactionLogic) HandleEvent(s *GameSession, userID string, ev GameEvent, _ *rand.Rand) (GameEventResult, error) {
	st := s.state.(*reactionState)
	if ev.Action != "press" {
		return GameEventResult{Message: "unknown action"}, nil
	}
	if ev.At.Before(st.signalAt) {
		return GameEventResult{Message: "too early"}, nil
	}
	if ev.At.After(st.closesAt) {
		return GameEventResult{}, domain.ErrGameClosed
	}
	if _, pressed := st.latencies[userID]; pressed {
		return GameEventResult{Message: "already pressed"}, nil
	}
	st.latencies[userID] = ev.At.Sub(st.signalAt)
	winner := st.first == ""
	if winner {
		st.first = userID
	}
	return GameEventResult{Accepted: true, Winner: winner}, nil
}

func (reactionLogic) IsComplete(s *GameSession, now time.Time) bool {
	st := s.state.(*reactionState)
	return now.After(st.closesAt)
}

func (reactionLogic) ComputeScores(s *GameSession) map[string]int {
	st := s.state.(*reactionState)
	scores := make(map[string]int, len(st.latencies))
	for userID, latency := range st.latencies {
		points := 1000 - int(latency.Milliseconds())/10
		if points < 50 {
			points = 50
		}
		if userID == st.first {
			points += 200
		}
		scores[userID] = points
	}
	return scores
}

// --- typing ---

var typingPhrases = []string{
	"the chicken dinner is earned not given",
	"never loot in the open when the circle is closing",
	"a silent landing beats a loud victory",
	"check your corners before you check the crate",
}

type typingState struct {
	phrase string
	first  string
	done   map[string]bool
}

type typingLogic struct{}

func (typingLogic) Init(s *GameSession, rnd *rand.Rand) {
	s.state = &typingState{
		phrase: typingPhrases[rnd.Intn(len(typingPhrases))],
		done:   make(map[string]bool),
	}
}

func (typingLogic) HandleEvent(s *GameSession, userID string, ev GameEvent, _ *rand.Rand) (GameEventResult, error) {
	st := s.state.(*typingState)
	switch ev.Action {
	case "show":
		return GameEventResult{Accepted: true, Message: st.phrase}, nil
	case "submit":
	default:
		return GameEventResult{Message: "unknown action"}, nil
	}
	if st.done[userID] {
		return GameEventResult{Message: "already finished"}, nil
	}
	if strings.TrimSpace(ev.Value) != st.phrase {
		return GameEventResult{Message: "no match"}, nil
	}
	st.done[userID] = true

	elapsed := ev.At.Sub(s.startedAt)
	if elapsed <= 0 {
		elapsed = time.Millisecond
	}
	words := len(strings.Fields(st.phrase))
	wpm := int(float64(words) / elapsed.Minutes())
	remaining := int(s.endsAt.Sub(ev.At).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	points := wpm*10 + remaining
	winner := st.first == ""
	if winner {
		st.first = userID
		points += 100
	}
	return GameEventResult{Accepted: true, Points: points, Winner: winner}, nil
}

func (typingLogic) IsComplete(*GameSession, time.Time) bool { return false }

func (typingLogic) ComputeScores(*GameSession) map[string]int { return nil }

// --- math ---
// Problems run one at a time with a 15s window each; unanswered problems are
// skipped when the window lapses.

const mathProblemWindow = 15 * time.Second

type mathProblem struct {
	prompt string
	answer int
}

type mathState struct {
	problems []mathProblem
	index    int
	shownAt  time.Time
}

type mathLogic struct{}

func (mathLogic) Init(s *GameSession, rnd *rand.Rand) {
	count := int(s.def.Duration / mathProblemWindow)
	if count < 1 {
		count = 1
	}
	problems := make([]mathProblem, count)
	for i := range problems {
		problems[i] = randomProblem(rnd)
	}
	s.state = &mathState{problems: problems, shownAt: s.startedAt}
}

func randomProblem(rnd *rand.Rand) mathProblem {
	switch rnd.Intn(3) {
	case 0:
		a, b := rnd.Intn(90)+10, rnd.Intn(90)+10
		return mathProblem{prompt: fmt.Sprintf("%d + %d", a, b), answer: a + b}
	case 1:
		a, b := rnd.Intn(90)+10, rnd.Intn(90)+10
		if b > a {
			a, b = b, a
		}
		return mathProblem{prompt: fmt.Sprintf("%d - %d", a, b), answer: a - b}
	default:
		a, b := rnd.Intn(11)+2, rnd.Intn(11)+2
		return mathProblem{prompt: fmt.Sprintf("%d × %d", a, b), answer: a * b}
	}
}

// advance skips problems whose windows have lapsed.
func (st *mathState) advance(now time.Time) {
	for st.index < len(st.problems) && now.Sub(st.shownAt) > mathProblemWindow {
		st.index++
		st.shownAt = st.shownAt.Add(mathProblemWindow)
	}
}

func (mathLogic) HandleEvent(s *GameSession, userID string, ev GameEvent, _ *rand.Rand) (GameEventResult, error) {
	st := s.state.(*mathState)
	st.advance(ev.At)
	if st.index >= len(st.problems) {
		return GameEventResult{}, domain.ErrGameClosed
	}
	current := st.problems[st.index]

	switch ev.Action {
	case "show":
		return GameEventResult{Accepted: true, Message: current.prompt}, nil
	case "answer":
	default:
		return GameEventResult{Message: "unknown action"}, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(ev.Value))
	if err != nil || value != current.answer {
		return GameEventResult{Message: "wrong"}, nil
	}

	points := 100 - int(ev.At.Sub(st.shownAt).Milliseconds())/100
	if points < 10 {
		points = 10
	}
	st.index++
	st.shownAt = ev.At
	next := ""
	if st.index < len(st.problems) {
		next = st.problems[st.index].prompt
	}
	return GameEventResult{Accepted: true, Points: points, Message: next}, nil
}

func (mathLogic) IsComplete(s *GameSession, now time.Time) bool {
	st := s.state.(*mathState)
	st.advance(now)
	return st.index >= len(st.problems)
}

func (mathLogic) ComputeScores(*GameSession) map[string]int { return nil }

// --- memory ---
// Each participant has their own growing sequence; a correct reproduction
// scores and appends a symbol, a miss restarts the sequence. Runs until the
// session duration cap.

var memorySymbols = []string{"♠", "♥", "♦", "♣", "★", "☂", "☀", "☾"}

const memoryStartLength = 3

type memoryState struct {
	sequences map[string][]string
}

type memoryLogic struct{}

func (memoryLogic) Init(s *GameSession, _ *rand.Rand) {
	s.state = &memoryState{sequences: make(map[string][]string)}
}

func (st *memoryState) sequenceFor(userID string, rnd *rand.Rand) []string {
	if seq, ok := st.sequences[userID]; ok {
		return seq
	}
	seq := make([]string, memoryStartLength)
	for i := range seq {
		seq[i] = memorySymbols[rnd.Intn(len(memorySymbols))]
	}
	st.sequences[userID] = seq
	return seq
}

func (memoryLogic) HandleEvent(s *GameSession, userID string, ev GameEvent, rnd *rand.Rand) (GameEventResult, error) {
	st := s.state.(*memoryState)
	seq := st.sequenceFor(userID, rnd)

	switch ev.Action {
	case "show":
		return GameEventResult{Accepted: true, Message: strings.Join(seq, " ")}, nil
	case "repeat":
	default:
		return GameEventResult{Message: "unknown action"}, nil
	}

	if strings.Join(seq, " ") != strings.TrimSpace(ev.Value) {
		delete(st.sequences, userID)
		return GameEventResult{Message: "sequence broken"}, nil
	}
	points := len(seq) * 10
	st.sequences[userID] = append(seq, memorySymbols[rnd.Intn(len(memorySymbols))])
	return GameEventResult{Accepted: true, Points: points}, nil
}

func (memoryLogic) IsComplete(*GameSession, time.Time) bool { return false }

func (memoryLogic) ComputeScores(*GameSession) map[string]int { return nil }

// --- lootbox ---
// A fixed number of boxes each resolve once on first open; duplicate opens
// are rejected.

const lootboxCount = 5

type lootItem struct {
	name  string
	value int
}

var lootTable = []lootItem{
	{"bandage", 20},
	{"energy drink", 40},
	{"level 3 helmet", 80},
	{"AWM", 120},
	{"golden frying pan", 200},
}

type lootbox struct {
	openedBy string
	item     lootItem
}

type lootboxState struct {
	boxes []lootbox
}

type lootboxLogic struct{}

func (lootboxLogic) Init(s *GameSession, _ *rand.Rand) {
	s.state = &lootboxState{boxes: make([]lootbox, lootboxCount)}
}

func (lootboxLogic) HandleEvent(s *GameSession, userID string, ev GameEvent, rnd *rand.Rand) (GameEventResult, error) {
	st := s.state.(*lootboxState)
	if ev.Action != "open" {
		return GameEventResult{Message: "unknown action"}, nil
	}
	index, err := strconv.Atoi(strings.TrimSpace(ev.Value))
	if err != nil || index < 0 || index >= len(st.boxes) {
		return GameEventResult{Message: "no such box"}, nil
	}
	if st.boxes[index].openedBy != "" {
		return GameEventResult{}, domain.ErrBoxAlreadyOpened
	}
	item := lootTable[rnd.Intn(len(lootTable))]
	st.boxes[index] = lootbox{openedBy: userID, item: item}
	return GameEventResult{Accepted: true, Points: item.value, Message: item.name}, nil
}

func (lootboxLogic) IsComplete(s *GameSession, _ time.Time) bool {
	st := s.state.(*lootboxState)
	for _, box := range st.boxes {
		if box.openedBy == "" {
			return false
		}
	}
	return true
}

func (lootboxLogic) ComputeScores(*GameSession) map[string]int { return nil }

// --- airdrop ---
// A single prize appears after a random delay; exactly one first-come claim
// wins.

const airdropPrize = 150

type airdropState struct {
	dropAt    time.Time
	claimedBy string
}

type airdropLogic struct{}

func (airdropLogic) Init(s *GameSession, rnd *rand.Rand) {
	window := s.endsAt.Sub(s.startedAt) / 2
	if window <= 0 {
		window = time.Second
	}
	s.state = &airdropState{
		dropAt: s.startedAt.Add(time.Duration(rnd.Int63n(int64(window)))),
	}
}

func (airdropLogic) HandleEvent(s *GameSession, userID string, ev GameEvent, _ *rand.Rand) (GameEventResult, error) {
	st := s.state.(*airdropState)
	if ev.Action != "claim" {
		return GameEventResult{Message: "unknown action"}, nil
	}
	if ev.At.Before(st.dropAt) {
		return GameEventResult{Message: "nothing to claim yet"}, nil
	}
	if st.claimedBy != "" {
		return GameEventResult{}, domain.ErrAlreadyClaimed
	}
	st.claimedBy = userID
	return GameEventResult{Accepted: true, Points: airdropPrize, Winner: true}, nil
}

func (airdropLogic) IsComplete(s *GameSession, _ time.Time) bool {
	st := s.state.(*airdropState)
	return st.claimedBy != ""
}

func (airdropLogic) ComputeScores(*GameSession) map[string]int { return nil }
