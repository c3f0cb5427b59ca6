package gateway

import (
	"net/http"

	"github.com/eleven-am/auteur/internal/shared"
	"github.com/eleven-am/auteur/internal/transport"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	hub    *Hub
	tokens *transport.TokenSource
}

func NewHandler(hub *Hub, tokens *transport.TokenSource) *Handler {
	return &Handler{hub: hub, tokens: tokens}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/:room", h.hub.HandleConnection)
	g.POST("/:room/token", h.IssueToken)
	g.GET("", h.Stats)
}

type TokenRequest struct {
	Identity string `json:"identity"`
}

type TokenResponse struct {
	Room     string `json:"room"`
	Identity string `json:"identity"`
	Token    string `json:"token,omitempty"`
}

// @Summary      Create a room token
// @Description  Mints a LiveKit access token for an identity to join a room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        room     path      string        true  "Room name"
// @Param        request  body      TokenRequest  true  "Participant identity"
// @Success      200      {object}  TokenResponse
// @Failure      400      {object}  shared.APIError
// @Failure      429      {object}  shared.APIError
// @Failure      500      {object}  shared.APIError
// @Router       /v1/rooms/{room}/token [post]
func (h *Handler) IssueToken(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	if req.Identity == "" {
		return shared.BadRequest("missing_identity", "identity is required")
	}

	room := c.Param("room")
	token, err := h.tokens.Token(req.Identity, room)
	if err != nil {
		return shared.InternalError("token_failed", "failed to mint room token")
	}

	return c.JSON(http.StatusOK, TokenResponse{
		Room:     room,
		Identity: req.Identity,
		Token:    token,
	})
}

// @Summary      Room hub statistics
// @Tags         rooms
// @Produce      json
// @Success      200  {object}  HubStats
// @Router       /v1/rooms [get]
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.hub.Stats())
}
