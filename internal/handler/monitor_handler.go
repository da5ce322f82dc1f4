package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kpredict/predict-backend/internal/config"
	"github.com/kpredict/predict-backend/internal/response"
	"github.com/kpredict/predict-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	monitorWriteTimeout = 10 * time.Second
	monitorPingInterval = 30 * time.Second
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams recompute progress to administrators over WebSocket.
type MonitorHandler struct {
	rdb            *redis.Client
	predictService *service.PredictService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, predictService *service.PredictService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		predictService: predictService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// RecomputeProgressWS godoc
// WS /ws/v1/admin/exams/:year/:exam/:round/progress
// Upgrades to WebSocket and forwards recompute progress events for one
// offering as they are published.
func (h *MonitorHandler) RecomputeProgressWS(c *gin.Context) {
	year, exam, round, ok := parseOffering(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	if _, err := h.predictService.GetExam(c.Request.Context(), year, exam, round); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	channel := config.CacheKey.RecomputeProgressChannel(year, exam, round)
	pubsub := h.rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	wsLog := h.log.With().
		Int("year", year).Str("exam", exam).Int("round", round).
		Logger()
	wsLog.Info().Msg("Admin attached to recompute progress stream")

	// Reader goroutine: surface client close without consuming messages.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := pubsub.Channel()
	pingTicker := time.NewTicker(monitorPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			wsLog.Info().Msg("Admin disconnected from progress stream")
			return

		case <-done:
			wsLog.Debug().Msg("Progress stream closed by client")
			return

		case msg, open := <-ch:
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Warn().Err(err).Msg("Progress write failed")
				return
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
