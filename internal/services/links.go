package services

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ShareMessage prefixes the view link in share sheets
const ShareMessage = "Someone made something special for you 💖"

// Links composes the public URLs derived from a page's slug
type Links struct {
	base string
}

// NewLinks creates a link builder for the front-end origin
func NewLinks(publicURL string) *Links {
	return &Links{base: strings.TrimRight(publicURL, "/")}
}

// View is the public viewer link
func (l *Links) View(slug string) string {
	return l.base + "/view/" + url.PathEscape(slug)
}

// Preview is the creator's post-creation share screen
func (l *Links) Preview(slug string) string {
	return l.base + "/preview/" + url.PathEscape(slug)
}

// AnonymousSend is the public send form of an anonymous page
func (l *Links) AnonymousSend(slug string) string {
	return l.base + "/anonymous/" + url.PathEscape(slug)
}

// Create is where a visitor starts a link of their own
func (l *Links) Create() string {
	return l.base + "/anonymous"
}

// Inbox is the owner-only inbox link carrying the owner token
func (l *Links) Inbox(slug, token string) string {
	q := url.Values{"token": {token}}
	return l.AnonymousSend(slug) + "/inbox?" + q.Encode()
}

// ShareText is the message offered to share sheets
func (l *Links) ShareText(slug string) string {
	return ShareMessage + " " + l.View(slug)
}

// WhatsApp is a wa.me share link for the view URL
func (l *Links) WhatsApp(slug string) string {
	return "https://wa.me/?text=" + url.QueryEscape(l.ShareText(slug))
}

// PageLinks is the share bundle returned after creating a page
type PageLinks struct {
	View      string `json:"view_url"`
	Preview   string `json:"preview_url"`
	ShareText string `json:"share_text"`
	WhatsApp  string `json:"whatsapp_url"`
}

// ForPage bundles the links of a regular page
func (l *Links) ForPage(slug string) PageLinks {
	return PageLinks{
		View:      l.View(slug),
		Preview:   l.Preview(slug),
		ShareText: l.ShareText(slug),
		WhatsApp:  l.WhatsApp(slug),
	}
}

// AnonymousLinks is the pair of links shown after generating an anonymous page
type AnonymousLinks struct {
	Public string `json:"public_url"`
	Inbox  string `json:"inbox_url"`
}

// ForAnonymous bundles the public and inbox links
func (l *Links) ForAnonymous(slug, token string) AnonymousLinks {
	return AnonymousLinks{
		Public: l.AnonymousSend(slug),
		Inbox:  l.Inbox(slug, token),
	}
}

// CopyConfirmDuration is how long a copy confirmation stays visible
const CopyConfirmDuration = 2 * time.Second

// Clipboard receives copied text
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// CopyFeedback tracks which link was copied most recently so the caller can
// show a short confirmation. A failed copy clears the state without error.
type CopyFeedback struct {
	clipboard Clipboard
	clock     Clock

	mu     sync.Mutex
	copied string
	gen    int
}

// NewCopyFeedback creates copy feedback on top of a clipboard
func NewCopyFeedback(clipboard Clipboard, clock Clock) *CopyFeedback {
	if clock == nil {
		clock = SystemClock
	}
	return &CopyFeedback{clipboard: clipboard, clock: clock}
}

// Copy writes value to the clipboard and marks kind as copied for
// CopyConfirmDuration. It reports whether the copy succeeded.
func (c *CopyFeedback) Copy(ctx context.Context, kind, value string) bool {
	if err := c.clipboard.WriteText(ctx, value); err != nil {
		c.mu.Lock()
		c.copied = ""
		c.gen++
		c.mu.Unlock()
		return false
	}

	c.mu.Lock()
	c.copied = kind
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	expired := c.clock.After(CopyConfirmDuration)
	go func() {
		<-expired
		c.mu.Lock()
		defer c.mu.Unlock()
		// a newer copy owns the state now
		if c.gen == gen {
			c.copied = ""
		}
	}()
	return true
}

// Copied returns the kind currently confirmed, or ""
func (c *CopyFeedback) Copied() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copied
}
