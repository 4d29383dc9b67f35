package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/clickcard/clickcard/app/models"
	"github.com/clickcard/clickcard/app/repository"
	"github.com/clickcard/clickcard/internal/pkg/entitlements"
	"github.com/clickcard/clickcard/internal/pkg/env"
)

// getCardRepo is overridable in tests
var getCardRepo = func() repository.CardRepository {
	return repository.GetGlobalFactory().GetCardRepository()
}

type cardLinkRequest struct {
	Label     string `json:"label"`
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`
}

type cardRequest struct {
	Slug        string            `json:"slug"`
	DisplayName string            `json:"display_name"`
	Bio         string            `json:"bio"`
	AvatarURL   string            `json:"avatar_url"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Links       []cardLinkRequest `json:"links"`
}

func (r cardRequest) links() []models.CardLink {
	links := make([]models.CardLink, 0, len(r.Links))
	for _, l := range r.Links {
		links = append(links, models.CardLink{
			Label:     strings.TrimSpace(l.Label),
			URL:       strings.TrimSpace(l.URL),
			SortOrder: l.SortOrder,
		})
	}
	return links
}

// HandleCardList returns all cards owned by the authenticated user.
func HandleCardList(c *fiber.Ctx) error {
	userCtx := currentUser(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	cards, err := getCardRepo().GetByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not load cards")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"cards": cards})
}

// HandleCardCreate creates a card for the authenticated user, enforcing the
// card limit of their current plan.
func HandleCardCreate(c *fiber.Ctx) error {
	userCtx := currentUser(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	var req cardRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_json", "request body must be valid JSON")
	}

	repo := getCardRepo()

	plan := newBillingService().PlanForUser(c.Context(), userCtx.UserID)
	count, err := repo.CountByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not check card limit")
	}
	if !entitlements.CanCreateCard(plan, int(count)) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "card_limit_reached",
			"message": "your current plan does not allow more cards, upgrade to create more",
			"plan":    string(plan),
			"limit":   entitlements.MaxCards(plan),
		})
	}

	card := models.Card{
		UserID:      userCtx.UserID,
		Slug:        models.NormalizeSlug(req.Slug),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Bio:         req.Bio,
		AvatarURL:   strings.TrimSpace(req.AvatarURL),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Links:       req.links(),
	}
	if err := card.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	if taken, err := repo.SlugExists(card.Slug); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not check slug")
	} else if taken {
		return jsonError(c, fiber.StatusConflict, "slug_taken", "this slug is already in use")
	}

	if err := repo.Create(&card); err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return jsonError(c, fiber.StatusConflict, "slug_taken", "this slug is already in use")
		}
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not create card")
	}

	return c.Status(fiber.StatusCreated).JSON(card)
}

// HandleCardGet returns one of the authenticated user's cards by UUID.
func HandleCardGet(c *fiber.Ctx) error {
	userCtx := currentUser(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	card, err := getCardRepo().GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "card not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not load card")
	}
	if card.UserID != userCtx.UserID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "card not found")
	}

	return c.Status(fiber.StatusOK).JSON(card)
}

// HandleCardUpdate updates one of the authenticated user's cards.
func HandleCardUpdate(c *fiber.Ctx) error {
	userCtx := currentUser(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	var req cardRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_json", "request body must be valid JSON")
	}

	repo := getCardRepo()
	card, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "card not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not load card")
	}
	if card.UserID != userCtx.UserID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "card not found")
	}

	card.Slug = models.NormalizeSlug(req.Slug)
	card.DisplayName = strings.TrimSpace(req.DisplayName)
	card.Bio = req.Bio
	card.AvatarURL = strings.TrimSpace(req.AvatarURL)
	card.Email = strings.TrimSpace(req.Email)
	card.Phone = strings.TrimSpace(req.Phone)
	links := req.links()
	card.Links = links
	if err := card.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	card.Links = nil

	if taken, err := repo.SlugExistsExceptID(card.Slug, card.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not check slug")
	} else if taken {
		return jsonError(c, fiber.StatusConflict, "slug_taken", "this slug is already in use")
	}

	if err := repo.UpdateWithLinks(card, links); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not update card")
	}

	updated, err := repo.GetByID(card.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not load card")
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

// HandleCardDelete removes one of the authenticated user's cards.
func HandleCardDelete(c *fiber.Ctx) error {
	userCtx := currentUser(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	repo := getCardRepo()
	card, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "card not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not load card")
	}
	if card.UserID != userCtx.UserID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "card not found")
	}

	if err := repo.Delete(card.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not delete card")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleCardPublic serves a card page by public slug, no authentication needed.
func HandleCardPublic(c *fiber.Ctx) error {
	slug := models.NormalizeSlug(c.Params("slug"))
	if err := models.ValidateSlug(slug); err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "card not found")
	}

	card, err := getCardRepo().GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "card not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not load card")
	}

	return c.Status(fiber.StatusOK).JSON(card)
}

// HandleCardPublicQR renders a QR code PNG pointing at the public card page,
// so a card can be shared offline.
func HandleCardPublicQR(c *fiber.Ctx) error {
	slug := models.NormalizeSlug(c.Params("slug"))
	if err := models.ValidateSlug(slug); err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "card not found")
	}

	if _, err := getCardRepo().GetBySlug(slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "card not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "datastore_error", "could not load card")
	}

	pageURL := strings.TrimRight(env.GetEnv("APP_URL", "http://localhost:4000"), "/") + "/c/" + slug
	png, err := qrcode.Encode(pageURL, qrcode.Medium, 256)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "qr_failed", "could not render QR code")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Status(fiber.StatusOK).Send(png)
}
