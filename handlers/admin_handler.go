package handlers

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/Dosada05/game-arena/games"
	"github.com/Dosada05/game-arena/services"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// AdminHandler exposes the operator surface: tournament lifecycle,
// bots, and snapshot round-tripping.
type AdminHandler struct {
	coordinator *services.Coordinator
	logger      *slog.Logger
}

func NewAdminHandler(coordinator *services.Coordinator, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{coordinator: coordinator, logger: logger}
}

// ListHandler handles GET /api/tournaments. Snapshots are assembled in
// parallel, one goroutine per tournament.
func (h *AdminHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournaments := h.coordinator.ListTournaments()

	snapshots := make([]*services.TournamentSnapshot, len(tournaments))
	var mu sync.Mutex
	g, _ := errgroup.WithContext(r.Context())
	for i, t := range tournaments {
		i, id := i, t.ID
		g.Go(func() error {
			snap, err := h.coordinator.Export(id)
			if err != nil {
				return err
			}
			mu.Lock()
			snapshots[i] = snap
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		mapServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"tournaments": snapshots})
}

type createTournamentInput struct {
	GameID   string `json:"gameId"`
	Label    string `json:"label,omitempty"`
	BotCount int    `json:"botCount,omitempty"`
}

func (h *AdminHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input createTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	t, err := h.coordinator.CreateTournament(input.GameID, input.Label, input.BotCount)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	h.logger.Info("tournament created via admin API",
		slog.String("tournament_id", t.ID), slog.String("game_id", t.GameID))
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"tournament": t})
}

type addBotsInput struct {
	Count int `json:"count"`
}

func (h *AdminHandler) AddBotsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	var input addBotsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.Count <= 0 {
		errorResponse(w, http.StatusBadRequest, "count must be positive")
		return
	}
	if err := h.coordinator.AddBots(tournamentID, input.Count); err != nil {
		mapServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"added": input.Count})
}

func (h *AdminHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if err := h.coordinator.StartTournament(tournamentID); err != nil {
		mapServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"started": tournamentID})
}

func (h *AdminHandler) FinishHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if err := h.coordinator.FinishTournament(tournamentID); err != nil {
		mapServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"finished": tournamentID})
}

func (h *AdminHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	snap, err := h.coordinator.Export(tournamentID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, snap)
}

func (h *AdminHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	var snap services.TournamentSnapshot
	if err := readJSON(w, r, &snap); err != nil {
		badRequestResponse(w, err)
		return
	}
	t, err := h.coordinator.Import(&snap)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	h.logger.Info("tournament imported via admin API", slog.String("tournament_id", t.ID))
	_ = writeJSON(w, http.StatusCreated, jsonResponse{"tournament": t})
}

// GamesHandler lists the playable game ids.
func (h *AdminHandler) GamesHandler(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, jsonResponse{"games": games.IDs()})
}
