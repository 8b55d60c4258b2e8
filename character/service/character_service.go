package service

import (
	"fmt"
	"strings"

	"companion-chat/backend/character/models"
	"companion-chat/backend/character/repository"
	"companion-chat/backend/pkg/cache"
)

// CharacterService serves the persona catalog with a read-through cache.
// The catalog is small and nearly static, so lookups on the hot chat path
// rarely touch the database.
type CharacterService struct {
	repo  repository.CharacterRepository
	cache *cache.Cache
}

func NewCharacterService(repo repository.CharacterRepository, c *cache.Cache) *CharacterService {
	return &CharacterService{repo: repo, cache: c}
}

func (s *CharacterService) CreateCharacter(req *models.CreateCharacterRequest) (*models.Character, error) {
	character := &models.Character{
		Name:        req.Name,
		Series:      req.Series,
		Age:         req.Age,
		Description: req.Description,
		Personality: req.Personality,
		AvatarURL:   req.AvatarURL,
	}
	if err := s.repo.Create(character); err != nil {
		return nil, err
	}
	s.invalidate(character)
	return character, nil
}

func (s *CharacterService) GetCharacter(id uint) (*models.Character, error) {
	key := fmt.Sprintf("character:id:%d", id)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if character, ok := cached.(*models.Character); ok {
				return character, nil
			}
		}
	}

	character, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(key, character)
	}
	return character, nil
}

// GetCharacterByName resolves a persona by its (case-insensitive) name.
func (s *CharacterService) GetCharacterByName(name string) (*models.Character, error) {
	key := "character:name:" + strings.ToLower(strings.TrimSpace(name))
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if character, ok := cached.(*models.Character); ok {
				return character, nil
			}
		}
	}

	character, err := s.repo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(key, character)
	}
	return character, nil
}

func (s *CharacterService) ListCharacters() ([]models.Character, error) {
	return s.repo.List()
}

func (s *CharacterService) ListBySeries(series string) ([]models.Character, error) {
	return s.repo.ListBySeries(series)
}

func (s *CharacterService) invalidate(character *models.Character) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(fmt.Sprintf("character:id:%d", character.ID))
	s.cache.Delete("character:name:" + strings.ToLower(character.Name))
}
