package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ErrInvalidSlug is returned for slugs that are not lowercase alphanumerics with dashes.
var ErrInvalidSlug = errors.New("slug may only contain lowercase letters, digits and dashes")

// Card is a slug-addressable public business card page owned by a user.
type Card struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        string         `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"-"`
	Slug        string         `gorm:"type:varchar(100) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"slug" validate:"required,min=1,max=100"`
	DisplayName string         `gorm:"type:varchar(150)" json:"display_name" validate:"max=150"`
	Bio         string         `gorm:"type:text" json:"bio" validate:"max=1000"`
	AvatarURL   string         `gorm:"type:varchar(255)" json:"avatar_url" validate:"omitempty,url,max=255"`
	Email       string         `gorm:"type:varchar(200)" json:"email" validate:"omitempty,email,max=200"`
	Phone       string         `gorm:"type:varchar(50)" json:"phone" validate:"max=50"`
	Links       []CardLink     `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"links,omitempty" validate:"dive"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// CardLink is a single external link shown on a card, in SortOrder.
type CardLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CardID    uint      `gorm:"not null;index" json:"card_id"`
	Label     string    `gorm:"type:varchar(100);not null" json:"label" validate:"required,max=100"`
	URL       string    `gorm:"type:varchar(500);not null" json:"url" validate:"required,url,max=500"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Card) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	return ValidateSlug(c.Slug)
}

// BeforeCreate generates the public UUID if not set
func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.New().String()
	}
	return nil
}

// NormalizeSlug lowercases and trims a user-provided slug.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidateSlug checks the normalized slug shape (lowercase alphanumerics and dashes).
func ValidateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}
