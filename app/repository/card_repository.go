package repository

import (
	"github.com/clickcard/clickcard/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cardRepository implements the CardRepository interface
type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new card repository instance
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

// Create creates a new card together with its links
func (r *cardRepository) Create(card *models.Card) error {
	return r.db.Create(card).Error
}

// GetByID retrieves a card by its ID
func (r *cardRepository) GetByID(id uint) (*models.Card, error) {
	var card models.Card
	err := r.db.Preload("Links", func(db *gorm.DB) *gorm.DB {
		return db.Order("card_links.sort_order ASC")
	}).First(&card, id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetByUUID retrieves a card by its UUID
func (r *cardRepository) GetByUUID(uuid string) (*models.Card, error) {
	var card models.Card
	err := r.db.Preload("Links", func(db *gorm.DB) *gorm.DB {
		return db.Order("card_links.sort_order ASC")
	}).Where("uuid = ?", uuid).First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetBySlug retrieves a card by its public slug
func (r *cardRepository) GetBySlug(slug string) (*models.Card, error) {
	var card models.Card
	err := r.db.Preload("Links", func(db *gorm.DB) *gorm.DB {
		return db.Order("card_links.sort_order ASC")
	}).Where("slug = ?", slug).First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetByUserID retrieves all cards owned by the given user
func (r *cardRepository) GetByUserID(userID uint) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.Preload("Links", func(db *gorm.DB) *gorm.DB {
		return db.Order("card_links.sort_order ASC")
	}).Where("user_id = ?", userID).Order("created_at DESC").Find(&cards).Error
	return cards, err
}

// Update updates an existing card in the database
func (r *cardRepository) Update(card *models.Card) error {
	return r.db.Save(card).Error
}

// UpdateWithLinks saves the card fields and swaps its full link set in a
// single transaction, so a failed link write rolls the card fields back too.
func (r *cardRepository) UpdateWithLinks(card *models.Card, links []models.CardLink) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(card).Error; err != nil {
			return err
		}
		return replaceLinks(tx, card.ID, links)
	})
}

// replaceLinks swaps the full link set of a card inside the given transaction
func replaceLinks(tx *gorm.DB, cardID uint, links []models.CardLink) error {
	if err := tx.Where("card_id = ?", cardID).Delete(&models.CardLink{}).Error; err != nil {
		return err
	}
	for i := range links {
		links[i].ID = 0
		links[i].CardID = cardID
	}
	if len(links) == 0 {
		return nil
	}
	return tx.Create(&links).Error
}

// Delete soft deletes a card by its ID
func (r *cardRepository) Delete(id uint) error {
	return r.db.Delete(&models.Card{}, id).Error
}

// Count returns the total number of cards
func (r *cardRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Card{}).Count(&count).Error
	return count, err
}

// CountByUserID returns how many cards a user currently owns
func (r *cardRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Card{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// SlugExists checks whether a slug is already taken
func (r *cardRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Card{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// SlugExistsExceptID checks slug uniqueness while ignoring one card (used on update)
func (r *cardRepository) SlugExistsExceptID(slug string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Card{}).Where("slug = ? AND id <> ?", slug, id).Count(&count).Error
	return count > 0, err
}
