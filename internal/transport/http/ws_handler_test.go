package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/app"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/infra/memory"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/questions"
)

type wsFixture struct {
	server     *httptest.Server
	challenges *app.ChallengeEngine
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	store := memory.NewStore()
	progress := memory.NewProgressStore()
	ledger := memory.NewRewardLedger(store)
	registry := app.NewRegistry()
	bank := questions.NewBank(questions.NewStaticLoader(questions.DefaultCatalog()))

	challenges := app.NewChallengeEngine(store, progress, ledger)
	quizzes := app.NewQuizEngine(registry, bank, ledger, ledger, store, challenges)
	games := app.NewMiniGameEngine(registry, ledger, ledger, store, challenges, app.DefaultMiniGames())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(quizzes, games, challenges).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &wsFixture{server: server, challenges: challenges}
}

func (f *wsFixture) dial(t *testing.T, userID, name string) *websocket.Conn {
	t.Helper()
	u := "ws" + f.server.URL[len("http"):] + "/ws?communityId=guild-1&channelId=trivia&userId=" + userID + "&name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type, msg.Payload
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func TestServeWSRejectsMissingIdentity(t *testing.T) {
	f := newWSFixture(t)
	resp, err := http.Get(f.server.URL + "/ws?communityId=guild-1&channelId=trivia")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestWebSocketQuizFlow(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "u1", "Alice")

	send(t, conn, "startQuiz", map[string]any{"settings": map[string]any{
		"questionCount":      1,
		"secondsPerQuestion": 30,
		"category":           "pubg",
		"difficulty":         "easy",
	}})
	msgType, payload := readNext(t, conn)
	if msgType != "quizStarted" {
		t.Fatalf("expected quizStarted, got %s (%s)", msgType, payload)
	}
	var view app.QuizView
	if err := json.Unmarshal(payload, &view); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	if view.ID == "" || view.Prompt == "" || len(view.Options) == 0 {
		t.Fatalf("view = %+v", view)
	}

	send(t, conn, "joinQuiz", map[string]any{"sessionId": view.ID})
	if msgType, _ = readNext(t, conn); msgType != "quizJoined" {
		t.Fatalf("expected quizJoined, got %s", msgType)
	}

	send(t, conn, "answer", map[string]any{"sessionId": view.ID, "answerIndex": 0})
	msgType, payload = readNext(t, conn)
	if msgType != "answerResult" {
		t.Fatalf("expected answerResult, got %s", msgType)
	}
	var outcome domain.AnswerOutcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		t.Fatalf("unmarshal outcome: %v", err)
	}
	if !outcome.Applicable {
		t.Fatalf("outcome = %+v", outcome)
	}

	send(t, conn, "endQuiz", map[string]any{"sessionId": view.ID})
	msgType, payload = readNext(t, conn)
	if msgType != "quizResults" {
		t.Fatalf("expected quizResults, got %s (%s)", msgType, payload)
	}
	var results []domain.RankedResult
	if err := json.Unmarshal(payload, &results); err != nil {
		t.Fatalf("unmarshal results: %v", err)
	}
	if len(results) != 1 || results[0].UserID != "u1" {
		t.Fatalf("results = %+v", results)
	}

	// the channel is free again once the quiz ended
	send(t, conn, "startQuiz", map[string]any{"settings": map[string]any{
		"questionCount":      1,
		"secondsPerQuestion": 30,
		"category":           "pubg",
		"difficulty":         "easy",
	}})
	if msgType, _ = readNext(t, conn); msgType != "quizStarted" {
		t.Fatalf("restart after end: got %s", msgType)
	}
}

func TestWebSocketScopeConflict(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "u1", "Alice")

	settings := map[string]any{"settings": map[string]any{
		"questionCount":      1,
		"secondsPerQuestion": 30,
		"category":           "general",
		"difficulty":         "easy",
	}}
	send(t, conn, "startQuiz", settings)
	if msgType, _ := readNext(t, conn); msgType != "quizStarted" {
		t.Fatalf("first start: got %s", msgType)
	}

	other := f.dial(t, "u2", "Bob")
	send(t, other, "startQuiz", settings)
	msgType, payload := readNext(t, other)
	if msgType != "error" {
		t.Fatalf("second start: got %s (%s)", msgType, payload)
	}
}

func TestWebSocketMiniGameRound(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "u1", "Alice")

	send(t, conn, "games", nil)
	msgType, payload := readNext(t, conn)
	if msgType != "games" {
		t.Fatalf("expected games, got %s", msgType)
	}
	var defs []domain.MiniGameDefinition
	if err := json.Unmarshal(payload, &defs); err != nil {
		t.Fatalf("unmarshal defs: %v", err)
	}
	if len(defs) != 6 {
		t.Fatalf("catalog size = %d, want 6", len(defs))
	}

	send(t, conn, "startGame", map[string]any{"definitionId": "lootbox-rush"})
	msgType, payload = readNext(t, conn)
	if msgType != "gameStarted" {
		t.Fatalf("expected gameStarted, got %s (%s)", msgType, payload)
	}
	var view app.GameView
	if err := json.Unmarshal(payload, &view); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}

	send(t, conn, "joinGame", map[string]any{"sessionId": view.ID})
	if msgType, _ = readNext(t, conn); msgType != "gameJoined" {
		t.Fatalf("expected gameJoined, got %s", msgType)
	}

	send(t, conn, "gameEvent", map[string]any{"sessionId": view.ID, "action": "open", "value": "0"})
	msgType, payload = readNext(t, conn)
	if msgType != "gameEventResult" {
		t.Fatalf("expected gameEventResult, got %s (%s)", msgType, payload)
	}
	var result app.GameEventResult
	if err := json.Unmarshal(payload, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if !result.Accepted || result.Points <= 0 {
		t.Fatalf("result = %+v", result)
	}

	send(t, conn, "endGame", map[string]any{"sessionId": view.ID})
	msgType, payload = readNext(t, conn)
	if msgType != "gameResults" {
		t.Fatalf("expected gameResults, got %s (%s)", msgType, payload)
	}
	var results []domain.RankedResult
	if err := json.Unmarshal(payload, &results); err != nil {
		t.Fatalf("unmarshal results: %v", err)
	}
	if len(results) != 1 || results[0].Score != result.Points {
		t.Fatalf("results = %+v", results)
	}
}

func TestWebSocketChallenges(t *testing.T) {
	f := newWSFixture(t)
	now := time.Now()
	if _, err := f.challenges.Create(context.Background(), domain.Challenge{
		Name:        "Chatterbox",
		Description: "Send 20 messages.",
		Period:      domain.PeriodDaily,
		Category:    domain.CategoryCommunity,
		Requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementMessages, Target: 20},
		},
		StartsAt: now,
		EndsAt:   now.Add(24 * time.Hour),
	}); err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	conn := f.dial(t, "u1", "Alice")
	send(t, conn, "challenges", nil)
	msgType, payload := readNext(t, conn)
	if msgType != "challenges" {
		t.Fatalf("expected challenges, got %s", msgType)
	}
	var challenges []domain.Challenge
	if err := json.Unmarshal(payload, &challenges); err != nil {
		t.Fatalf("unmarshal challenges: %v", err)
	}
	if len(challenges) != 1 || challenges[0].Name != "Chatterbox" {
		t.Fatalf("challenges = %+v", challenges)
	}

	send(t, conn, "claim", map[string]any{"challengeId": challenges[0].ID})
	if msgType, _ = readNext(t, conn); msgType != "error" {
		t.Fatalf("claim without progress: got %s", msgType)
	}

	send(t, conn, "progress", nil)
	if msgType, _ = readNext(t, conn); msgType != "progress" {
		t.Fatalf("expected progress, got %s", msgType)
	}
}

func TestWebSocketUnknownType(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "u1", "Alice")
	send(t, conn, "teleport", nil)
	msgType, payload := readNext(t, conn)
	if msgType != "error" {
		t.Fatalf("expected error, got %s (%s)", msgType, payload)
	}
}
