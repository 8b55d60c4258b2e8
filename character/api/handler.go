package api

import (
	"net/http"
	"strconv"

	"companion-chat/backend/character/models"
	"companion-chat/backend/character/service"
	"companion-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

type CharacterHandler struct {
	service *service.CharacterService
}

func NewCharacterHandler(service *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{service: service}
}

// RegisterRoutes registers the character catalog routes
func (h *CharacterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	characters := rg.Group("/characters")
	{
		characters.GET("", h.ListCharacters)
		characters.GET("/:id", h.GetCharacter)
		characters.GET("/by-name/:name", h.GetCharacterByName)
		characters.POST("", h.CreateCharacter)
	}
}

func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	series := c.Query("series")

	var characters []models.Character
	var err error
	if series != "" {
		characters, err = h.service.ListBySeries(series)
	} else {
		characters, err = h.service.ListCharacters()
	}
	if err != nil {
		c.Error(errors.NewInternalServerError(errors.CodeStoreRead, "Failed to list characters"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"characters": characters, "count": len(characters)})
}

func (h *CharacterHandler) GetCharacter(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NewBadRequestError(errors.CodeValidation, "Invalid character ID"))
		return
	}

	character, err := h.service.GetCharacter(uint(id))
	if err != nil {
		c.Error(errors.NewNotFoundError(errors.CodeNotFound, "Character not found"))
		return
	}

	c.JSON(http.StatusOK, character)
}

func (h *CharacterHandler) GetCharacterByName(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Error(errors.NewBadRequestError(errors.CodeValidation, "Character name is required"))
		return
	}

	character, err := h.service.GetCharacterByName(name)
	if err != nil {
		c.Error(errors.NewNotFoundError(errors.CodeNotFound, "Character not found"))
		return
	}

	c.JSON(http.StatusOK, character)
}

func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var req models.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError(errors.CodeValidation, "Invalid request format"))
		return
	}

	character, err := h.service.CreateCharacter(&req)
	if err != nil {
		c.Error(errors.NewInternalServerError(errors.CodeStoreWrite, "Failed to create character"))
		return
	}

	c.JSON(http.StatusCreated, character)
}
