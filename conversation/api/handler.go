package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"companion-chat/backend/conversation/repository"
	"companion-chat/backend/conversation/service"
	apperrors "companion-chat/backend/pkg/errors"
	"companion-chat/backend/pkg/middleware"
)

// ChatHandler exposes the conversation and chat endpoints.
type ChatHandler struct {
	sessions         *service.SessionManager
	store            service.Store
	ephemeralEnabled bool
}

func NewChatHandler(sessions *service.SessionManager, store service.Store, ephemeralEnabled bool) *ChatHandler {
	return &ChatHandler{
		sessions:         sessions,
		store:            store,
		ephemeralEnabled: ephemeralEnabled,
	}
}

// RegisterRoutes mounts the chat surface. The group is expected to run
// behind optional authentication so anonymous users get ephemeral
// sessions.
func (h *ChatHandler) RegisterRoutes(rg *gin.RouterGroup, entitled gin.HandlerFunc) {
	rg.GET("/conversations", h.ListConversations)
	rg.POST("/conversations", h.StartConversation)
	rg.GET("/conversations/:id/messages", h.ConversationMessages)

	chat := rg.Group("/chat")
	chat.POST("/intro", h.Intro)
	chat.POST("/reset", h.Reset)
	chat.POST("/send", entitled, h.Send)
	chat.POST("/image", entitled, h.Image)
}

type chatRequest struct {
	CharacterID uint   `json:"character_id" binding:"required"`
	Text        string `json:"text"`
	Prompt      string `json:"prompt"`
}

func (h *ChatHandler) session(c *gin.Context, characterID uint) (*service.ChatSession, bool) {
	userID := middleware.UserIDFromContext(c)
	guestID := middleware.GuestIDFromContext(c)
	if userID == 0 {
		if !h.ephemeralEnabled {
			c.Error(apperrors.NewUnauthorizedError(apperrors.CodeUnauthorized, "authentication required"))
			return nil, false
		}
		// no guest token means the guest middleware is not mounted;
		// a throwaway key keeps the session private to this request
		if guestID == "" {
			guestID = uuid.NewString()
		}
	}

	session, err := h.sessions.Session(c.Request.Context(), userID, guestID, characterID)
	if err != nil {
		c.Error(apperrors.NewNotFoundError(apperrors.CodeNotFound, "character not found"))
		return nil, false
	}
	return session, true
}

// Send handles one chat turn: persist the user's message, generate the
// character's reply, persist that too.
func (h *ChatHandler) Send(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, err.Error()))
		return
	}

	session, ok := h.session(c, req.CharacterID)
	if !ok {
		return
	}

	reply, err := session.SendMessage(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, service.ErrMessageLimit) {
			c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "conversation message limit reached"))
			return
		}
		if errors.Is(err, service.ErrConversationLimit) {
			c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "conversation limit reached"))
			return
		}
		c.Error(apperrors.NewBadGatewayError(apperrors.CodeGeneration, "failed to generate a reply"))
		return
	}
	if reply == nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "message text is required"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": session.ConversationID(),
		"message":         reply,
	})
}

// Intro returns the character's opening message, synthesizing it on
// first call for a fresh conversation.
func (h *ChatHandler) Intro(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, err.Error()))
		return
	}

	session, ok := h.session(c, req.CharacterID)
	if !ok {
		return
	}

	intro, err := session.EnsureIntro(c.Request.Context())
	if err != nil {
		c.Error(apperrors.NewBadGatewayError(apperrors.CodeGeneration, "failed to synthesize intro"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   session.IntroStatus(),
		"message":  intro,
		"messages": session.View(service.ViewOptions{}),
	})
}

// Reset starts a fresh conversation for the pair
func (h *ChatHandler) Reset(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, err.Error()))
		return
	}

	session, ok := h.session(c, req.CharacterID)
	if !ok {
		return
	}

	session.StartNewConversation()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// Image generates an image turn from a prompt
func (h *ChatHandler) Image(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, err.Error()))
		return
	}
	if req.Prompt == "" {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "prompt is required"))
		return
	}

	session, ok := h.session(c, req.CharacterID)
	if !ok {
		return
	}

	msg, err := session.SendImage(c.Request.Context(), req.Prompt)
	if err != nil {
		c.Error(apperrors.NewBadGatewayError(apperrors.CodeGeneration, "failed to generate image"))
		return
	}
	if msg == nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "prompt is required"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": session.ConversationID(),
		"message":         msg,
	})
}

// ListConversations returns the authenticated user's conversations,
// most recent first. Anonymous users have nothing persisted.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == 0 {
		c.JSON(http.StatusOK, gin.H{"conversations": []any{}})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "invalid limit"))
			return
		}
		limit = parsed
	}

	convs, err := h.store.ListConversations(c.Request.Context(), userID, limit)
	if err != nil {
		c.Error(apperrors.NewInternalServerError(apperrors.CodeStoreRead, "failed to list conversations"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// StartConversation resets the session so the next message opens a new
// conversation.
func (h *ChatHandler) StartConversation(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, err.Error()))
		return
	}

	session, ok := h.session(c, req.CharacterID)
	if !ok {
		return
	}

	session.StartNewConversation()
	c.JSON(http.StatusCreated, gin.H{
		"character_id": req.CharacterID,
		"status":       "ready",
	})
}

// ConversationMessages loads a persisted conversation into the session
// and returns its assembled view.
func (h *ChatHandler) ConversationMessages(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "invalid conversation id"))
		return
	}

	conv, err := h.store.GetConversation(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			c.Error(apperrors.NewNotFoundError(apperrors.CodeNotFound, "conversation not found"))
			return
		}
		c.Error(apperrors.NewInternalServerError(apperrors.CodeStoreRead, "failed to load conversation"))
		return
	}

	session, ok := h.session(c, conv.CharacterID)
	if !ok {
		return
	}

	if err := session.LoadConversation(c.Request.Context(), conv.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrStaleLoad):
			// a newer action superseded this load; nothing to render
			c.JSON(http.StatusOK, gin.H{"messages": []any{}, "stale": true})
		case errors.Is(err, service.ErrNotOwner), errors.Is(err, repository.ErrConversationNotFound):
			c.Error(apperrors.NewNotFoundError(apperrors.CodeNotFound, "conversation not found"))
		default:
			c.Error(apperrors.NewInternalServerError(apperrors.CodeStoreRead, "failed to load conversation"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conv,
		"messages":     session.View(service.ViewOptions{}),
	})
}
