package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/app"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// WSHandler exposes the engines over a websocket command surface. Rendering
// and platform specifics stay with the connected client.
type WSHandler struct {
	quizzes    *app.QuizEngine
	games      *app.MiniGameEngine
	challenges *app.ChallengeEngine
	upgrader   websocket.Upgrader
}

func NewWSHandler(quizzes *app.QuizEngine, games *app.MiniGameEngine, challenges *app.ChallengeEngine) *WSHandler {
	return &WSHandler{
		quizzes:    quizzes,
		games:      games,
		challenges: challenges,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type startQuizPayload struct {
	Settings domain.QuizSettings `json:"settings"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type answerPayload struct {
	SessionID   string `json:"sessionId"`
	AnswerIndex int    `json:"answerIndex"`
}

type startGamePayload struct {
	DefinitionID string `json:"definitionId"`
}

type gameEventPayload struct {
	SessionID string `json:"sessionId"`
	Action    string `json:"action"`
	Value     string `json:"value,omitempty"`
}

type claimPayload struct {
	ChallengeID string `json:"challengeId"`
}

// ServeWS upgrades the request and serves engine commands until the client
// disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	scope := domain.Scope{
		CommunityID: r.URL.Query().Get("communityId"),
		ChannelID:   r.URL.Query().Get("channelId"),
	}
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if scope.CommunityID == "" || scope.ChannelID == "" || userID == "" || displayName == "" {
		http.Error(w, "missing communityId, channelId, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan any, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, scope, userID, displayName, inbound, send)
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, scope domain.Scope, userID, displayName string, inbound inboundMessage, send chan<- any) {
	ctx := r.Context()
	fail := func(err error) {
		send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}
	badPayload := func() {
		send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid payload"}}
	}

	switch inbound.Type {
	case "startQuiz":
		var payload startQuizPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		session, err := h.quizzes.Start(ctx, scope, userID, payload.Settings)
		if err != nil {
			fail(err)
			return
		}
		view, err := h.quizzes.Get(session.ID())
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[app.QuizView]{Type: "quizStarted", Payload: view}
	case "joinQuiz":
		var payload sessionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		if err := h.quizzes.Join(payload.SessionID, userID, displayName); err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[sessionPayload]{Type: "quizJoined", Payload: payload}
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		outcome, err := h.quizzes.SubmitAnswer(payload.SessionID, userID, payload.AnswerIndex)
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[domain.AnswerOutcome]{Type: "answerResult", Payload: outcome}
	case "nextQuestion":
		var payload sessionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		if _, _, err := h.quizzes.Advance(payload.SessionID); err != nil {
			fail(err)
			return
		}
		view, err := h.quizzes.Get(payload.SessionID)
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[app.QuizView]{Type: "question", Payload: view}
	case "endQuiz":
		var payload sessionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		results, err := h.quizzes.End(ctx, payload.SessionID)
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[[]domain.RankedResult]{Type: "quizResults", Payload: results}
	case "quiz":
		var payload sessionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		view, err := h.quizzes.Get(payload.SessionID)
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[app.QuizView]{Type: "quiz", Payload: view}
	case "games":
		send <- outboundMessage[[]domain.MiniGameDefinition]{Type: "games", Payload: h.games.Definitions()}
	case "startGame":
		var payload startGamePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		session, err := h.games.Start(ctx, payload.DefinitionID, scope, userID)
		if err != nil {
			fail(err)
			return
		}
		view, err := h.games.Get(session.ID())
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[app.GameView]{Type: "gameStarted", Payload: view}
	case "joinGame":
		var payload sessionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		if err := h.games.Join(payload.SessionID, userID, displayName); err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[sessionPayload]{Type: "gameJoined", Payload: payload}
	case "gameEvent":
		var payload gameEventPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		result, err := h.games.HandleEvent(payload.SessionID, userID, app.GameEvent{Action: payload.Action, Value: payload.Value})
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[app.GameEventResult]{Type: "gameEventResult", Payload: result}
	case "endGame":
		var payload sessionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		results, err := h.games.End(ctx, payload.SessionID)
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[[]domain.RankedResult]{Type: "gameResults", Payload: results}
	case "challenges":
		send <- outboundMessage[[]domain.Challenge]{Type: "challenges", Payload: h.challenges.ListActive()}
	case "progress":
		records, err := h.challenges.UserProgress(ctx, userID)
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[[]domain.ChallengeProgress]{Type: "progress", Payload: records}
	case "claim":
		var payload claimPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		reward, err := h.challenges.Claim(ctx, userID, payload.ChallengeID)
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[domain.RewardTemplate]{Type: "claimed", Payload: reward}
	default:
		send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}
