package services

import (
	"fmt"
	"strings"
	"time"

	"emo-pages-backend/internal/models"
	"emo-pages-backend/internal/schema"
)

// PresentationKind tags the variant carried by a Presentation
type PresentationKind string

const (
	KindMemory          PresentationKind = "memory"
	KindValentine       PresentationKind = "valentine"
	KindValentineWish   PresentationKind = "valentine_wish"
	KindAnonymous       PresentationKind = "anonymous"
	KindBirthday        PresentationKind = "birthday"
	KindBirthdayAdvance PresentationKind = "birthday_advance"
	KindPlaceholder     PresentationKind = "placeholder"
)

// NotImplementedMessage is shown for page types without a renderer
const NotImplementedMessage = "Page type not implemented yet"

// Presentation is the revealed view of a page, one variant per page type
type Presentation struct {
	Kind PresentationKind `json:"kind"`
	Data any              `json:"data"`
}

// ValentinePresentation is the yes/no question with its button labels
type ValentinePresentation struct {
	ReceiverName string `json:"receiver_name"`
	Question     string `json:"question"`
	YesText      string `json:"yes_text"`
	NoText       string `json:"no_text"`
	SongLink     string `json:"song_link,omitempty"`
	MaxNo        int    `json:"max_no_attempts"`
}

// WishPresentation is a wish card with the template already filled in
type WishPresentation struct {
	ReceiverName  string `json:"receiver_name"`
	WishType      string `json:"wish_type,omitempty"`
	Message       string `json:"message"`
	CustomMessage string `json:"custom_message,omitempty"`
	Signature     string `json:"signature,omitempty"`
	SongLink      string `json:"song_link,omitempty"`
}

// BirthdayPresentation is a birthday card in one of the themes
type BirthdayPresentation struct {
	ReceiverName  string               `json:"receiver_name"`
	Headline      string               `json:"headline"`
	Subtitle      string               `json:"subtitle"`
	Age           string               `json:"age,omitempty"`
	BirthdayDate  string               `json:"birthday_date,omitempty"`
	CustomMessage string               `json:"custom_message"`
	Signature     string               `json:"signature,omitempty"`
	Theme         schema.BirthdayTheme `json:"theme"`
	SongLink      string               `json:"song_link,omitempty"`
}

// BirthdayAdvancePresentation is an upcoming birthday with its countdown,
// plans and gift ideas. TimeLeft and DaysUntil never go below zero.
type BirthdayAdvancePresentation struct {
	ReceiverName     string               `json:"receiver_name"`
	BirthdayDate     string               `json:"birthday_date,omitempty"`
	HasDate          bool                 `json:"has_date"`
	Countdown        bool                 `json:"countdown"`
	TimeLeft         TimeLeft             `json:"time_left"`
	DaysUntil        int                  `json:"days_until"`
	CountdownMessage string               `json:"countdown_message"`
	PlanHighlights   []string             `json:"plan_highlights"`
	SurpriseNote     string               `json:"surprise_note"`
	GiftIdeas        []string             `json:"gift_ideas"`
	PlaylistLink     string               `json:"playlist_link,omitempty"`
	Theme            schema.BirthdayTheme `json:"theme"`
	SongLink         string               `json:"song_link,omitempty"`
}

// AnonymousPresentation is the sender's side of an anonymous page. The
// owner never sees replies here; that lives in the inbox.
type AnonymousPresentation struct {
	Prompt     string `json:"prompt"`
	Message    string `json:"message,omitempty"`
	Hint       string `json:"hint"`
	AllowReply bool   `json:"allow_reply"`
	MaxLength  int    `json:"max_length"`
}

// MemoryImage is one photo of a memory page
type MemoryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// MemoryAnswer pairs a fixed question with the creator's answer
type MemoryAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MemoryPresentation is a memory page; legacy message and qa pages render
// through it too
type MemoryPresentation struct {
	ReceiverName   string         `json:"receiver_name"`
	Title          string         `json:"title,omitempty"`
	ClosingMessage string         `json:"closing_message,omitempty"`
	Images         []MemoryImage  `json:"images"`
	Answers        []MemoryAnswer `json:"answers,omitempty"`
	Background     string         `json:"background"`
	LegacyType     string         `json:"legacy_type,omitempty"`
}

// PlaceholderPresentation stands in for a type with no renderer
type PlaceholderPresentation struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Render dispatches page to its type's presentation. Every stored type
// string maps to exactly one variant; anything unknown gets the placeholder.
func Render(page *models.Page, now time.Time) Presentation {
	c := page.Content
	switch page.Type {
	case models.PageTypeMemory, models.PageTypeLegacyMessage, models.PageTypeLegacyQA:
		if page.Type != models.PageTypeMemory {
			page = migrated(page)
			c = page.Content
		}
		return Presentation{Kind: KindMemory, Data: renderMemory(c)}
	case models.PageTypeValentine:
		return Presentation{Kind: KindValentine, Data: ValentinePresentation{
			ReceiverName: c.String("receiverName"),
			Question:     orDefault(c.String("questionText"), "Will you be my Valentine?"),
			YesText:      orDefault(c.String("yesButtonText"), "Yes!"),
			NoText:       orDefault(c.String("noButtonText"), "No"),
			SongLink:     c.String("songLink"),
			MaxNo:        MaxNoAttempts,
		}}
	case models.PageTypeValentineWish:
		return Presentation{Kind: KindValentineWish, Data: renderWish(c)}
	case models.PageTypeBirthday:
		return Presentation{Kind: KindBirthday, Data: renderBirthday(c)}
	case models.PageTypeBirthdayAdvance:
		return Presentation{Kind: KindBirthdayAdvance, Data: RenderBirthdayAdvance(c, now)}
	case models.PageTypeAnonymous:
		return Presentation{Kind: KindAnonymous, Data: AnonymousPresentation{
			Prompt:     orDefault(c.String("prompt"), DefaultPrompt),
			Message:    c.String("message"),
			Hint:       orDefault(c.String("hint"), "Tell me something you like about me..."),
			AllowReply: c.Bool("allowReply", true),
			MaxLength:  schema.MaxMessageLength,
		}}
	default:
		return Presentation{Kind: KindPlaceholder, Data: PlaceholderPresentation{
			Type:    string(page.Type),
			Message: NotImplementedMessage,
		}}
	}
}

func migrated(page *models.Page) *models.Page {
	cp := *page
	schema.MigrateLegacy(&cp)
	return &cp
}

func renderMemory(c models.Content) MemoryPresentation {
	out := MemoryPresentation{
		ReceiverName:   c.String("receiverName"),
		Title:          c.String("title"),
		ClosingMessage: c.String("closingMessage"),
		Background:     schema.BackgroundClass(c.String("backgroundStyle")),
		LegacyType:     c.String(schema.LegacyTypeKey),
		Images:         []MemoryImage{},
	}

	captions := c.Strings("captions")
	for i, url := range c.Strings("images") {
		if i >= schema.MaxImages {
			break
		}
		img := MemoryImage{URL: url}
		if i < len(captions) {
			img.Caption = captions[i]
		}
		out.Images = append(out.Images, img)
	}

	answers := c.Strings("answers")
	for i, a := range answers {
		if i >= schema.MaxAnswers {
			break
		}
		q := fmt.Sprintf("Question %d", i+1)
		if i < len(schema.QAQuestions) {
			q = schema.QAQuestions[i]
		}
		out.Answers = append(out.Answers, MemoryAnswer{Question: q, Answer: a})
	}
	return out
}

func renderWish(c models.Content) WishPresentation {
	name := orDefault(c.String("receiverName"), "You")
	message := schema.DefaultWish
	wishType := c.String("wishType")
	if w, ok := schema.Wish(wishType); ok {
		message = w.Template
	}
	return WishPresentation{
		ReceiverName:  c.String("receiverName"),
		WishType:      wishType,
		Message:       strings.Replace(message, "{name}", name, 1),
		CustomMessage: c.String("customMessage"),
		Signature:     c.String("signature"),
		SongLink:      c.String("songLink"),
	}
}

func renderBirthday(c models.Content) BirthdayPresentation {
	name := orDefault(c.String("receiverName"), "you")
	age := c.String("age")
	subtitle := "Today is all about you."
	if age != "" && age != "0" {
		subtitle = fmt.Sprintf("Celebrating %s amazing years.", age)
	} else {
		age = ""
	}
	return BirthdayPresentation{
		ReceiverName:  c.String("receiverName"),
		Headline:      fmt.Sprintf("Happy Birthday, %s!", name),
		Subtitle:      subtitle,
		Age:           age,
		BirthdayDate:  c.String("birthdayDate"),
		CustomMessage: orDefault(c.String("customMessage"), "Wishing you joy, laughter, and everything you love most."),
		Signature:     c.String("signature"),
		Theme:         schema.Theme(c.String("theme")),
		SongLink:      c.String("songLink"),
	}
}

// RenderBirthdayAdvance computes the advance-birthday presentation with the
// countdown as of now. The view session calls it once per second.
func RenderBirthdayAdvance(c models.Content, now time.Time) BirthdayAdvancePresentation {
	out := BirthdayAdvancePresentation{
		ReceiverName:     orDefault(c.String("receiverName"), "someone special"),
		BirthdayDate:     c.String("birthdayDate"),
		Countdown:        c.Bool("countdown", true),
		CountdownMessage: orDefault(c.String("countdownMessage"), "Something special is on the way."),
		PlanHighlights:   nonNil(c.Strings("planHighlights")),
		SurpriseNote:     orDefault(c.String("surpriseNote"), "Something sweet is coming."),
		GiftIdeas:        nonNil(c.Strings("giftIdeas")),
		PlaylistLink:     c.String("playlistLink"),
		Theme:            schema.Theme(c.String("theme")),
		SongLink:         c.String("songLink"),
	}
	if target, ok := ParseBirthdayDate(out.BirthdayDate); ok {
		out.HasDate = true
		out.TimeLeft = TimeLeftUntil(target, now)
		out.DaysUntil = max(DaysUntil(target, now), 0)
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
