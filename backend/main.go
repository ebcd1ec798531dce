package main

import (
	"context"
	"encoding/json"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/inarow/inarow/engine"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type StatusResponse struct {
	Settings        GameSettingsDTO   `json:"settings"`
	Config          Config            `json:"config"`
	NextPlayer      string            `json:"next_player"`
	Winner          string            `json:"winner"`
	Rows            int               `json:"rows"`
	Cols            int               `json:"cols"`
	WinLength       int               `json:"win_length"`
	Board           [][]int           `json:"board"`
	Status          string            `json:"status"`
	History         []historyEntryDTO `json:"history"`
	WinningLine     []apiMove         `json:"winning_line"`
	LastMessage     string            `json:"last_message"`
	AiThinking      bool              `json:"ai_thinking"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

type GameSettingsDTO struct {
	Mode        string `json:"mode"`
	HumanPlayer string `json:"human_player"`
	Rows        int    `json:"rows,omitempty"`
	Cols        int    `json:"cols,omitempty"`
	WinLength   int    `json:"win_length,omitempty"`
	XStarts     *bool  `json:"x_starts,omitempty"`
	Difficulty  *int   `json:"difficulty,omitempty"`
}

type historyEntryDTO struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Player    string  `json:"player"`
	ElapsedMs float64 `json:"elapsed_ms"`
	IsAi      bool    `json:"is_ai"`
	Depth     int     `json:"depth"`
	Score     int64   `json:"score"`
	Nodes     int64   `json:"nodes"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

type resetPayload struct {
	History         []historyEntryDTO `json:"history"`
	NextPlayer      string            `json:"next_player"`
	Status          string            `json:"status"`
	Rows            int               `json:"rows"`
	Cols            int               `json:"cols"`
	WinLength       int               `json:"win_length"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

type settingsPayload struct {
	Settings GameSettingsDTO `json:"settings"`
	Config   Config          `json:"config"`
}

type cacheStatusResponse struct {
	Count     int     `json:"count"`
	Capacity  int     `json:"capacity"`
	Usage     float64 `json:"usage"`
	Full      bool    `json:"full"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Rejected  uint64  `json:"rejected"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	root := zerolog.New(os.Stderr).With().Timestamp().Logger()
	log.Logger = root.With().Str("component", "backend").Logger()

	config := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
		config = loaded
	}
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", config.LogLevel).Msg("parse log level")
	}
	zerolog.SetGlobalLevel(level)
	configStore.Update(config)

	middleware.DefaultLogger = middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  stdlog.New(root.With().Str("component", "http").Logger(), "", 0),
		NoColor: true,
	})

	metrics := NewMetrics()
	controller, err := NewGameController(DefaultGameSettings(), root.With().Str("component", "ai").Logger(), metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("create game")
	}
	metrics.RegisterCache(controller.CacheStats)
	hub := NewHub()

	server := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(controller, hub, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		hub.Run(ctx.Done())
		return nil
	})
	group.Go(func() error {
		runTicker(ctx, controller, hub, time.Duration(config.TickIntervalMs)*time.Millisecond)
		return nil
	})
	group.Go(func() error {
		log.Info().Str("addr", *addr).Msg("backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(config.ShutdownTimeoutS)*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("graceful shutdown failed")
			if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
				return errors.Wrap(closeErr, "forced close")
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Error().Err(err).Msg("exiting after server error")
		os.Exit(1)
	}
}

// runTicker drives the match: every tick lets the seat to move act and
// pushes the result to websocket clients.
func runTicker(ctx context.Context, controller *GameController, hub *Hub, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if controller.Tick() {
				if entry, ok := controller.LatestHistoryEntry(); ok {
					hub.PublishHistory(historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
				}
				hub.PublishStatus(controllerStatus(controller))
			}
		}
	}
}

func newRouter(controller *GameController, hub *Hub, metrics *Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings GameSettingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		settings := settingsFromDTO(payload.Settings, DefaultGameSettings())
		if err := controller.StartGame(settings); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.PublishReset(resetFromController(controller))
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		if err := controller.Reset(controller.Settings()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.PublishReset(resetFromController(controller))
	})

	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *GameSettingsDTO `json:"settings"`
			Config   json.RawMessage  `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if len(payload.Config) > 0 {
			// Keys left out keep their current value.
			config := GetConfig()
			if err := json.Unmarshal(payload.Config, &config); err != nil {
				writeError(w, http.StatusBadRequest, "invalid config")
				return
			}
			if err := config.Validate(); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			configStore.Update(config)
			if err := controller.ResetForConfigChange(); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		if payload.Settings != nil {
			settings := settingsFromDTO(*payload.Settings, controller.Settings())
			if err := controller.UpdateSettings(settings, false); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		hub.PublishSettings(settingsPayload{
			Settings: controllerSettingsDTO(controller.Settings()),
			Config:   GetConfig(),
		})
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		applied, errMsg := controller.ApplyHumanMove(toEngineMove(payload))
		if !applied {
			status := http.StatusBadRequest
			if errMsg == "not human turn" || errMsg == "game not running" {
				status = http.StatusConflict
			}
			writeError(w, status, errMsg)
			return
		}
		if entry, ok := controller.LatestHistoryEntry(); ok {
			hub.PublishHistory(historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
		}
		status := controllerStatus(controller)
		hub.PublishStatus(status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Get("/api/cache", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cacheStatus(controller.CacheStats()))
	})
	r.Delete("/api/cache", func(w http.ResponseWriter, r *http.Request) {
		controller.ClearCaches()
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade")
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			log.Debug().Err(err).Msg("websocket writer stopped")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})
		case "move":
			var move apiMove
			if err := json.Unmarshal(msg.Payload, &move); err != nil {
				continue
			}
			controller.OnCellClicked(toEngineMove(move))
		}
	}
}

func controllerStatus(controller *GameController) StatusResponse {
	state := controller.State()
	settings := controller.Settings()
	return StatusResponse{
		Settings:        controllerSettingsDTO(settings),
		Config:          GetConfig(),
		NextPlayer:      state.ToMove.String(),
		Winner:          winnerFromStatus(state.Status),
		Rows:            settings.Rows,
		Cols:            settings.Cols,
		WinLength:       settings.WinLength,
		Board:           boardToSlice(state.Grid),
		Status:          statusToString(state.Status),
		History:         historyToDTO(controller.History()),
		WinningLine:     fromEngineMoves(state.WinningLine),
		LastMessage:     state.LastMessage,
		AiThinking:      controller.AiThinking(),
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func settingsFromDTO(dto GameSettingsDTO, base GameSettings) GameSettings {
	settings := base
	switch dto.Mode {
	case "ai_vs_ai":
		settings.XType = PlayerAI
		settings.OType = PlayerAI
	case "human_vs_human":
		settings.XType = PlayerHuman
		settings.OType = PlayerHuman
	case "ai_vs_human":
		if dto.HumanPlayer == "O" {
			settings.XType = PlayerAI
			settings.OType = PlayerHuman
		} else {
			settings.XType = PlayerHuman
			settings.OType = PlayerAI
		}
	}
	if dto.Rows > 0 {
		settings.Rows = dto.Rows
	}
	if dto.Cols > 0 {
		settings.Cols = dto.Cols
	}
	if dto.WinLength > 0 {
		settings.WinLength = dto.WinLength
	}
	if dto.XStarts != nil {
		settings.XStarts = *dto.XStarts
	}
	if dto.Difficulty != nil {
		settings.Difficulty = engine.Difficulty(*dto.Difficulty)
	}
	return settings
}

func controllerSettingsDTO(settings GameSettings) GameSettingsDTO {
	mode := "ai_vs_human"
	humanPlayer := ""
	switch {
	case settings.XType == PlayerAI && settings.OType == PlayerAI:
		mode = "ai_vs_ai"
	case settings.XType == PlayerHuman && settings.OType == PlayerHuman:
		mode = "human_vs_human"
		humanPlayer = "X"
	case settings.XType == PlayerHuman:
		humanPlayer = "X"
	default:
		humanPlayer = "O"
	}
	xStarts := settings.XStarts
	difficulty := int(settings.Difficulty)
	return GameSettingsDTO{
		Mode:        mode,
		HumanPlayer: humanPlayer,
		Rows:        settings.Rows,
		Cols:        settings.Cols,
		WinLength:   settings.WinLength,
		XStarts:     &xStarts,
		Difficulty:  &difficulty,
	}
}

func boardToSlice(grid *engine.Grid) [][]int {
	rows := make([][]int, grid.Rows())
	for row := range rows {
		rows[row] = make([]int, grid.Cols())
		for col := range rows[row] {
			rows[row][col] = symbolToInt(grid.At(row, col))
		}
	}
	return rows
}

func symbolToInt(symbol engine.Symbol) int {
	switch symbol {
	case engine.X:
		return 1
	case engine.O:
		return 2
	default:
		return 0
	}
}

func winnerFromStatus(status GameStatus) string {
	switch status {
	case StatusXWon:
		return engine.X.String()
	case StatusOWon:
		return engine.O.String()
	default:
		return ""
	}
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusNotStarted:
		return "not_started"
	case StatusXWon:
		return "x_won"
	case StatusOWon:
		return "o_won"
	case StatusDraw:
		return "draw"
	default:
		return "running"
	}
}

func historyToDTO(history MoveHistory) []historyEntryDTO {
	entries := history.All()
	result := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, historyEntryToDTO(entry))
	}
	return result
}

func historyEntryToDTO(entry HistoryEntry) historyEntryDTO {
	move := fromEngineMove(entry.Move)
	return historyEntryDTO{
		X:         move.X,
		Y:         move.Y,
		Player:    entry.Player.String(),
		ElapsedMs: entry.ElapsedMs,
		IsAi:      entry.IsAi,
		Depth:     entry.Depth,
		Score:     entry.Score,
		Nodes:     entry.Nodes,
	}
}

func cacheStatus(stats engine.CacheStats) cacheStatusResponse {
	resp := cacheStatusResponse{
		Count:     stats.Size,
		Capacity:  stats.Capacity,
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Rejected:  stats.Rejected,
		Evictions: stats.Evictions,
	}
	if stats.Capacity > 0 {
		resp.Usage = float64(stats.Size) / float64(stats.Capacity)
		resp.Full = stats.Size >= stats.Capacity
	}
	if probes := stats.Hits + stats.Misses + stats.Rejected; probes > 0 {
		resp.HitRate = float64(stats.Hits) / float64(probes)
	}
	return resp
}

func resetFromController(controller *GameController) resetPayload {
	state := controller.State()
	settings := controller.Settings()
	return resetPayload{
		History:         historyToDTO(controller.History()),
		NextPlayer:      state.ToMove.String(),
		Status:          statusToString(state.Status),
		Rows:            settings.Rows,
		Cols:            settings.Cols,
		WinLength:       settings.WinLength,
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
