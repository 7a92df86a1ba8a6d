package models

import "time"

// PageType identifies which form, content shape and renderer a page uses
type PageType string

const (
	PageTypeMemory          PageType = "memory"
	PageTypeValentine       PageType = "valentine"
	PageTypeValentineWish   PageType = "valentine_wish"
	PageTypeAnonymous       PageType = "anonymous"
	PageTypeBirthday        PageType = "birthday"
	PageTypeBirthdayAdvance PageType = "birthday_advance"

	// Earlier revisions stored these; they are migrated to memory on read.
	PageTypeLegacyMessage PageType = "message"
	PageTypeLegacyQA      PageType = "qa"
)

// Tone is the mood picked in the first builder step
type Tone string

const (
	ToneRomantic Tone = "romantic"
	TonePlayful  Tone = "playful"
	ToneMixed    Tone = "mixed"
)

// Occasion groups pages by event
type Occasion string

const (
	OccasionValentine Occasion = "valentine"
	OccasionBirthday  Occasion = "birthday"
	OccasionOther     Occasion = "other"
)

// OwnerTokenKey is the content key holding an anonymous page's inbox credential
const OwnerTokenKey = "ownerToken"

// Page represents one shareable creation
type Page struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Type        PageType   `json:"type"`
	Tone        Tone       `json:"tone"`
	Occasion    Occasion   `json:"occasion"`
	Content     Content    `json:"content"`
	IsAnonymous bool       `json:"is_anonymous"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Public returns a copy of the page that is safe to show a visitor: the
// owner token never leaves the creator's screen.
func (p *Page) Public() *Page {
	cp := *p
	cp.Content = p.Content.Clone()
	delete(cp.Content, OwnerTokenKey)
	return &cp
}

// OwnerToken returns the inbox credential stored in the content, if any
func (p *Page) OwnerToken() string {
	return p.Content.String(OwnerTokenKey)
}

// View is an impression log entry
type View struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Response is a reply submitted against an anonymous page
type Response struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}
