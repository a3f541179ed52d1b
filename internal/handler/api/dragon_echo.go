package api

import (
	"errors"
	"time"

	"DragonVeins/internal/service/coingecko"
	"DragonVeins/internal/usecase"
	xhttp "DragonVeins/pkg/http"
	xlogger "DragonVeins/pkg/logger"
	xutil "DragonVeins/pkg/util"

	"github.com/labstack/echo/v4"
)

// DragonEchoHandler exposes the session's derived state over Echo.
type DragonEchoHandler struct {
	logger  *xlogger.Logger
	session *usecase.Session
	details *usecase.DetailService
	stream  *StreamHandler
}

func NewDragonEchoHandler(logger *xlogger.Logger, session *usecase.Session, details *usecase.DetailService, stream *StreamHandler) *DragonEchoHandler {
	return &DragonEchoHandler{logger: logger, session: session, details: details, stream: stream}
}

func (h *DragonEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/coins", h.Coins)
	g.GET("/coins/:id", h.CoinDetail)
	g.GET("/state", h.State)
	g.GET("/activity", h.Activity)
	g.GET("/bursts", h.Bursts)
	g.PUT("/selection", h.Select)
	g.DELETE("/selection", h.ClearSelection)

	e.GET("/healthz", h.Health)
	if h.stream != nil {
		e.GET("/ws", h.stream.Serve)
	}
}

// Coins lists the current snapshot in fetched order, optionally filtered by
// a name/symbol substring.
func (h *DragonEchoHandler) Coins(c echo.Context) error {
	coins := h.session.Coins(c.QueryParam("q"))
	return xhttp.ListResponse(c, coins, int64(len(coins)))
}

// CoinDetail proxies the upstream detail endpoint through the cache.
func (h *DragonEchoHandler) CoinDetail(c echo.Context) error {
	id := c.Param("id")

	detail, err := h.details.Coin(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, coingecko.ErrNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("coin %q not found", id))
		}
		h.logger.Error("coin detail lookup failed", xlogger.Error(err), xlogger.String("coin_id", id))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("upstream detail lookup failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, detail)
}

// State returns the selected coin, its mood and energy level.
func (h *DragonEchoHandler) State(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.session.State())
}

// Activity returns the bounded activity log, newest-first. Supports ?limit=
// and ?since= (RFC3339 or unix seconds).
func (h *DragonEchoHandler) Activity(c echo.Context) error {
	limit := xutil.ParseIntDefault(c.QueryParam("limit"), 0)
	since := xutil.ParseTimeDefault(c.QueryParam("since"), time.Time{})
	events := h.session.Activities(limit, since)
	return xhttp.ListResponse(c, events, int64(len(events)))
}

type burstsResponse struct {
	Bursts  interface{} `json:"bursts"`
	Flashes interface{} `json:"flashes"`
}

// Bursts returns both ephemeral effect buffers.
func (h *DragonEchoHandler) Bursts(c echo.Context) error {
	return xhttp.SuccessResponse(c, &burstsResponse{
		Bursts:  h.session.Bursts(),
		Flashes: h.session.Flashes(),
	})
}

// SelectRequest is the selection mutator payload.
type SelectRequest struct {
	CoinID string `json:"coin_id" validate:"required"`
}

// Select changes the operator selection to a coin present in the store.
func (h *DragonEchoHandler) Select(c echo.Context) error {
	req := &SelectRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.session.SelectCoin(req.CoinID); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("coin %q not in snapshot", req.CoinID))
	}
	return xhttp.SuccessResponse(c, h.session.State())
}

// ClearSelection drops the selection until the next refresh re-defaults it.
func (h *DragonEchoHandler) ClearSelection(c echo.Context) error {
	h.session.ClearSelection()
	return xhttp.NoContentResponse(c)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Selected  string    `json:"selected,omitempty"`
	Coins     int       `json:"coins"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Health reports liveness and feed freshness.
func (h *DragonEchoHandler) Health(c echo.Context) error {
	st := h.session.State()
	resp := &healthResponse{
		Status:    "ok",
		Coins:     len(h.session.Coins("")),
		UpdatedAt: st.UpdatedAt,
	}
	if st.Selected != nil {
		resp.Selected = st.Selected.ID
	}
	return xhttp.SuccessResponse(c, resp)
}
