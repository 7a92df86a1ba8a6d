package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"emo-pages-backend/internal/models"
	"emo-pages-backend/internal/schema"

	"github.com/rs/zerolog/log"
)

// DefaultPrompt is the question shown on every anonymous send page
const DefaultPrompt = "Say something real. Be kind."

// ResponseListener is told about every saved reply
type ResponseListener interface {
	ResponseSaved(resp *models.Response)
}

// AnonymousService handles anonymous links, replies and the owner inbox
type AnonymousService struct {
	pages     *PageService
	listeners []ResponseListener
}

// NewAnonymousService creates a new anonymous service
func NewAnonymousService(pages *PageService, listeners ...ResponseListener) *AnonymousService {
	return &AnonymousService{
		pages:     pages,
		listeners: listeners,
	}
}

// AnonymousLink is what the creator sees right after generating a link.
// OwnerToken is never shown again.
type AnonymousLink struct {
	Page       *models.Page
	OwnerToken string
}

// Inbox is an authorised view of an anonymous page's replies, newest first
type Inbox struct {
	Page      *models.Page       `json:"page"`
	Responses []*models.Response `json:"responses"`
}

// Create persists a new anonymous page with a fresh owner token
func (s *AnonymousService) Create(ctx context.Context) (*AnonymousLink, error) {
	token := GenerateOwnerToken()
	page, err := s.pages.create(ctx, &models.Page{
		Type:     models.PageTypeAnonymous,
		Tone:     models.ToneMixed,
		Occasion: models.OccasionOther,
		Content: models.Content{
			"prompt":             DefaultPrompt,
			models.OwnerTokenKey: token,
		},
		IsAnonymous: true,
	})
	if err != nil {
		return nil, err
	}
	return &AnonymousLink{Page: page, OwnerToken: token}, nil
}

// SendPage loads the public side of an anonymous page
func (s *AnonymousService) SendPage(ctx context.Context, slug string) (*models.Page, error) {
	page, err := s.pages.FetchPage(ctx, slug)
	if err != nil {
		return nil, err
	}
	if page.Type != models.PageTypeAnonymous {
		return nil, fmt.Errorf("page %q is not anonymous: %w", slug, models.ErrNotFound)
	}
	return page.Public(), nil
}

// Reply validates and saves a reply to the page with the given slug
func (s *AnonymousService) Reply(ctx context.Context, slug, text string) (*models.Response, error) {
	text, err := validateReply(text)
	if err != nil {
		return nil, err
	}
	page, err := s.SendPage(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, page.ID, text)
}

// ReplyToPage saves a reply for an already loaded page
func (s *AnonymousService) ReplyToPage(ctx context.Context, page *models.Page, text string) (*models.Response, error) {
	text, err := validateReply(text)
	if err != nil {
		return nil, err
	}
	if page.Type != models.PageTypeAnonymous {
		return nil, &models.ValidationError{Field: "response", Reason: "this page does not accept replies"}
	}
	return s.save(ctx, page.ID, text)
}

func (s *AnonymousService) save(ctx context.Context, pageID, text string) (*models.Response, error) {
	resp, err := s.pages.store.SaveResponse(ctx, pageID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}
	s.pages.metrics.ResponseSaved()

	for _, l := range s.listeners {
		l.ResponseSaved(resp)
	}
	return resp, nil
}

func validateReply(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &models.ValidationError{Field: "response", Reason: "message is empty"}
	}
	return schema.Truncate(text), nil
}

// Inbox authorises token against the page's owner token and returns its
// replies. Unknown slugs and bad tokens both yield ErrUnauthorized so the
// caller learns nothing about which slugs exist.
func (s *AnonymousService) Inbox(ctx context.Context, slug, token string) (*Inbox, error) {
	page, err := s.Authorize(ctx, slug, token)
	if err != nil {
		return nil, err
	}
	return s.InboxForPage(ctx, page)
}

// Authorize checks token against the owner token of the page at slug
func (s *AnonymousService) Authorize(ctx context.Context, slug, token string) (*models.Page, error) {
	page, err := s.pages.FetchPage(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}

	owner := page.OwnerToken()
	if owner == "" || token == "" || subtle.ConstantTimeCompare([]byte(owner), []byte(token)) != 1 {
		log.Warn().Str("slug", slug).Msg("Inbox token mismatch")
		return nil, models.ErrUnauthorized
	}
	return page, nil
}

// InboxForPage fetches replies for a page that was already authorised
func (s *AnonymousService) InboxForPage(ctx context.Context, page *models.Page) (*Inbox, error) {
	responses, err := s.pages.store.ListResponsesByPageID(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch responses: %w", err)
	}
	return &Inbox{Page: page.Public(), Responses: responses}, nil
}
