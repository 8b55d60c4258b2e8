package repository

import (
	"strings"

	"companion-chat/backend/character/models"

	"gorm.io/gorm"
)

type CharacterRepository interface {
	Create(character *models.Character) error
	GetByID(id uint) (*models.Character, error)
	GetByName(name string) (*models.Character, error)
	List() ([]models.Character, error)
	ListBySeries(series string) ([]models.Character, error)
	Count() (int64, error)
}

type GormCharacterRepository struct {
	db *gorm.DB
}

func NewGormCharacterRepository(db *gorm.DB) *GormCharacterRepository {
	return &GormCharacterRepository{db: db}
}

func (r *GormCharacterRepository) Create(character *models.Character) error {
	return r.db.Create(character).Error
}

func (r *GormCharacterRepository) GetByID(id uint) (*models.Character, error) {
	var character models.Character
	err := r.db.First(&character, id).Error
	if err != nil {
		return nil, err
	}
	return &character, nil
}

// GetByName performs a case-insensitive lookup. Chat routes address
// characters by URL-encoded lowercase name.
func (r *GormCharacterRepository) GetByName(name string) (*models.Character, error) {
	var character models.Character
	err := r.db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&character).Error
	if err != nil {
		return nil, err
	}
	return &character, nil
}

func (r *GormCharacterRepository) List() ([]models.Character, error) {
	var characters []models.Character
	err := r.db.Order("series, id").Find(&characters).Error
	return characters, err
}

func (r *GormCharacterRepository) ListBySeries(series string) ([]models.Character, error) {
	var characters []models.Character
	err := r.db.Where("series = ?", series).Order("id").Find(&characters).Error
	return characters, err
}

func (r *GormCharacterRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Character{}).Count(&count).Error
	return count, err
}
