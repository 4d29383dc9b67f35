package repository

import (
	"github.com/clickcard/clickcard/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	Count() (int64, error)
}

// CardRepository defines the interface for card-related database operations
type CardRepository interface {
	Create(card *models.Card) error
	GetByID(id uint) (*models.Card, error)
	GetByUUID(uuid string) (*models.Card, error)
	GetBySlug(slug string) (*models.Card, error)
	GetByUserID(userID uint) ([]models.Card, error)
	Update(card *models.Card) error
	UpdateWithLinks(card *models.Card, links []models.CardLink) error
	Delete(id uint) error
	Count() (int64, error)
	CountByUserID(userID uint) (int64, error)
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User UserRepository
	Card CardRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User: NewUserRepository(db),
		Card: NewCardRepository(db),
	}
}
