package controllers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clickcard/clickcard/app/models"
	"github.com/clickcard/clickcard/app/repository"
	"github.com/clickcard/clickcard/internal/pkg/entitlements"
	"github.com/clickcard/clickcard/internal/pkg/usercontext"
)

type fakeCardRepo struct {
	cards     map[uint]*models.Card
	nextID    uint
	updateErr error
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: make(map[uint]*models.Card)}
}

func (r *fakeCardRepo) Create(card *models.Card) error {
	if taken, _ := r.SlugExists(card.Slug); taken {
		return fmt.Errorf("Error 1062 (23000): Duplicate entry '%s' for key 'cards.slug'", card.Slug)
	}
	r.nextID++
	card.ID = r.nextID
	if card.UUID == "" {
		card.UUID = fmt.Sprintf("uuid-%d", card.ID)
	}
	r.cards[card.ID] = card
	return nil
}

func (r *fakeCardRepo) GetByID(id uint) (*models.Card, error) {
	card, ok := r.cards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return card, nil
}

func (r *fakeCardRepo) GetByUUID(uuid string) (*models.Card, error) {
	for _, card := range r.cards {
		if card.UUID == uuid {
			cp := *card
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCardRepo) GetBySlug(slug string) (*models.Card, error) {
	for _, card := range r.cards {
		if card.Slug == slug {
			return card, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCardRepo) GetByUserID(userID uint) ([]models.Card, error) {
	var out []models.Card
	for _, card := range r.cards {
		if card.UserID == userID {
			out = append(out, *card)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) Update(card *models.Card) error {
	r.cards[card.ID] = card
	return nil
}

func (r *fakeCardRepo) UpdateWithLinks(card *models.Card, links []models.CardLink) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.cards[card.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	card.Links = links
	r.cards[card.ID] = card
	return nil
}

func (r *fakeCardRepo) Delete(id uint) error {
	delete(r.cards, id)
	return nil
}

func (r *fakeCardRepo) Count() (int64, error) {
	return int64(len(r.cards)), nil
}

func (r *fakeCardRepo) CountByUserID(userID uint) (int64, error) {
	var n int64
	for _, card := range r.cards {
		if card.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCardRepo) SlugExists(slug string) (bool, error) {
	_, err := r.GetBySlug(slug)
	return err == nil, nil
}

func (r *fakeCardRepo) SlugExistsExceptID(slug string, id uint) (bool, error) {
	card, err := r.GetBySlug(slug)
	if err != nil {
		return false, nil
	}
	return card.ID != id, nil
}

func withCardRepo(t *testing.T, repo repository.CardRepository) {
	t.Helper()
	prev := getCardRepo
	getCardRepo = func() repository.CardRepository { return repo }
	t.Cleanup(func() { getCardRepo = prev })
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleCardCreate_Success(t *testing.T) {
	repo := newFakeCardRepo()
	withCardRepo(t, repo)
	withBillingSeams(t, &fakeBillingService{plan: entitlements.PlanFree}, nil, nil)

	app := newAuthedApp(fiber.MethodPost, "/cards", HandleCardCreate, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	body := `{"slug":"jane-doe","display_name":"Jane Doe","links":[{"label":"Site","url":"https://example.com","sort_order":0}]}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/cards", body), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	card, lookupErr := repo.GetBySlug("jane-doe")
	require.NoError(t, lookupErr)
	assert.Equal(t, uint(7), card.UserID)
	require.Len(t, card.Links, 1)
	assert.Equal(t, "https://example.com", card.Links[0].URL)
}

func TestHandleCardCreate_LimitReached(t *testing.T) {
	repo := newFakeCardRepo()
	require.NoError(t, repo.Create(&models.Card{UserID: 7, Slug: "first"}))
	withCardRepo(t, repo)
	withBillingSeams(t, &fakeBillingService{plan: entitlements.PlanFree}, nil, nil)

	app := newAuthedApp(fiber.MethodPost, "/cards", HandleCardCreate, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/cards", `{"slug":"second"}`), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.Contains(t, string(body), "card_limit_reached")
	assert.Contains(t, string(body), "upgrade")
}

func TestHandleCardCreate_ProPlanAllowsMore(t *testing.T) {
	repo := newFakeCardRepo()
	require.NoError(t, repo.Create(&models.Card{UserID: 7, Slug: "first"}))
	withCardRepo(t, repo)
	withBillingSeams(t, &fakeBillingService{plan: entitlements.PlanPro}, nil, nil)

	app := newAuthedApp(fiber.MethodPost, "/cards", HandleCardCreate, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/cards", `{"slug":"second"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestHandleCardCreate_SlugTaken(t *testing.T) {
	repo := newFakeCardRepo()
	require.NoError(t, repo.Create(&models.Card{UserID: 3, Slug: "jane-doe"}))
	withCardRepo(t, repo)
	withBillingSeams(t, &fakeBillingService{plan: entitlements.PlanFree}, nil, nil)

	app := newAuthedApp(fiber.MethodPost, "/cards", HandleCardCreate, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/cards", `{"slug":"jane-doe"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHandleCardCreate_InvalidSlug(t *testing.T) {
	withCardRepo(t, newFakeCardRepo())
	withBillingSeams(t, &fakeBillingService{plan: entitlements.PlanFree}, nil, nil)

	app := newAuthedApp(fiber.MethodPost, "/cards", HandleCardCreate, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/cards", `{"slug":"Not Valid!"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleCardCreate_InvalidLink(t *testing.T) {
	repo := newFakeCardRepo()
	withCardRepo(t, repo)
	withBillingSeams(t, &fakeBillingService{plan: entitlements.PlanFree}, nil, nil)

	app := newAuthedApp(fiber.MethodPost, "/cards", HandleCardCreate, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	// empty label and a non-URL both have to be rejected
	body := `{"slug":"jane-doe","links":[{"label":"","url":"not a url"}]}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/cards", body), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	_, lookupErr := repo.GetBySlug("jane-doe")
	assert.Error(t, lookupErr, "invalid cards must not be persisted")
}

func TestHandleCardCreate_Unauthorized(t *testing.T) {
	app := fiber.New()
	app.Post("/cards", HandleCardCreate)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/cards", `{"slug":"x"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleCardGet_OwnerIsolation(t *testing.T) {
	repo := newFakeCardRepo()
	require.NoError(t, repo.Create(&models.Card{UserID: 3, Slug: "someone-else", UUID: "uuid-other"}))
	withCardRepo(t, repo)

	app := newAuthedApp(fiber.MethodGet, "/cards/:uuid", HandleCardGet, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/cards/uuid-other", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleCardUpdate_Success(t *testing.T) {
	repo := newFakeCardRepo()
	require.NoError(t, repo.Create(&models.Card{UserID: 7, Slug: "mine", UUID: "uuid-mine", DisplayName: "Old"}))
	withCardRepo(t, repo)

	app := newAuthedApp(fiber.MethodPut, "/cards/:uuid", HandleCardUpdate, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	body := `{"slug":"mine","display_name":"New","links":[{"label":"Site","url":"https://example.com","sort_order":0}]}`
	resp, err := app.Test(jsonRequest(http.MethodPut, "/cards/uuid-mine", body), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	card, lookupErr := repo.GetBySlug("mine")
	require.NoError(t, lookupErr)
	assert.Equal(t, "New", card.DisplayName)
	require.Len(t, card.Links, 1)
	assert.Equal(t, "https://example.com", card.Links[0].URL)
}

func TestHandleCardUpdate_InvalidLink(t *testing.T) {
	repo := newFakeCardRepo()
	require.NoError(t, repo.Create(&models.Card{
		UserID: 7, Slug: "mine", UUID: "uuid-mine", DisplayName: "Old",
		Links: []models.CardLink{{Label: "Site", URL: "https://example.com"}},
	}))
	withCardRepo(t, repo)

	app := newAuthedApp(fiber.MethodPut, "/cards/:uuid", HandleCardUpdate, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	body := `{"slug":"mine","display_name":"New","links":[{"label":"","url":"not a url"}]}`
	resp, err := app.Test(jsonRequest(http.MethodPut, "/cards/uuid-mine", body), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	card, lookupErr := repo.GetBySlug("mine")
	require.NoError(t, lookupErr)
	assert.Equal(t, "Old", card.DisplayName, "rejected updates must not change the card")
	require.Len(t, card.Links, 1)
	assert.Equal(t, "https://example.com", card.Links[0].URL)
}

func TestHandleCardUpdate_WriteFailureLeavesCardUntouched(t *testing.T) {
	repo := newFakeCardRepo()
	require.NoError(t, repo.Create(&models.Card{UserID: 7, Slug: "mine", UUID: "uuid-mine", DisplayName: "Old"}))
	repo.updateErr = gorm.ErrInvalidTransaction
	withCardRepo(t, repo)

	app := newAuthedApp(fiber.MethodPut, "/cards/:uuid", HandleCardUpdate, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	body := `{"slug":"mine","display_name":"New","links":[{"label":"Site","url":"https://example.com"}]}`
	resp, err := app.Test(jsonRequest(http.MethodPut, "/cards/uuid-mine", body), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	card, lookupErr := repo.GetBySlug("mine")
	require.NoError(t, lookupErr)
	assert.Equal(t, "Old", card.DisplayName, "a failed write must not leave partial card state")
}

func TestHandleCardDelete(t *testing.T) {
	repo := newFakeCardRepo()
	require.NoError(t, repo.Create(&models.Card{UserID: 7, Slug: "mine", UUID: "uuid-mine"}))
	withCardRepo(t, repo)

	app := newAuthedApp(fiber.MethodDelete, "/cards/:uuid", HandleCardDelete, usercontext.UserContext{
		UserID: 7, IsLoggedIn: true,
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/cards/uuid-mine", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, lookupErr := repo.GetBySlug("mine")
	assert.Error(t, lookupErr)
}

func TestHandleCardPublic(t *testing.T) {
	repo := newFakeCardRepo()
	require.NoError(t, repo.Create(&models.Card{
		UserID:      7,
		Slug:        "jane-doe",
		DisplayName: "Jane Doe",
		Links:       []models.CardLink{{Label: "Site", URL: "https://example.com"}},
	}))
	withCardRepo(t, repo)

	app := fiber.New()
	app.Get("/c/:slug", HandleCardPublic)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/c/jane-doe", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.Contains(t, string(body), "Jane Doe")
	assert.Contains(t, string(body), "https://example.com")
}

func TestHandleCardPublic_NotFound(t *testing.T) {
	withCardRepo(t, newFakeCardRepo())

	app := fiber.New()
	app.Get("/c/:slug", HandleCardPublic)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/c/nobody-here", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleCardPublic_InvalidSlug(t *testing.T) {
	withCardRepo(t, newFakeCardRepo())

	app := fiber.New()
	app.Get("/c/:slug", HandleCardPublic)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/c/NOT--valid", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleCardPublicQR(t *testing.T) {
	repo := newFakeCardRepo()
	require.NoError(t, repo.Create(&models.Card{UserID: 7, Slug: "jane-doe"}))
	withCardRepo(t, repo)

	app := fiber.New()
	app.Get("/c/:slug/qr", HandleCardPublicQR)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/c/jane-doe/qr", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.True(t, strings.HasPrefix(string(body), "\x89PNG\r\n\x1a\n"), "response must be a PNG image")
}

func TestHandleCardPublicQR_NotFound(t *testing.T) {
	withCardRepo(t, newFakeCardRepo())

	app := fiber.New()
	app.Get("/c/:slug/qr", HandleCardPublicQR)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/c/nobody-here/qr", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
