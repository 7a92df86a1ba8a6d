// Package schema is the declarative registry of page types: their forms,
// visual choices and limits. It is read by the builder and the viewer alike.
package schema

import (
	"time"
	"unicode/utf8"

	"emo-pages-backend/internal/models"
)

const (
	MaxMessageLength = 500
	MaxImages        = 6
	MaxAnswers       = 5
	DefaultExpiry    = 72 * time.Hour
)

// FieldKind tells the form how to collect a value
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextArea FieldKind = "textarea"
	FieldDate     FieldKind = "date"
	FieldNumber   FieldKind = "number"
	FieldChoice   FieldKind = "choice"
	FieldList     FieldKind = "list"
	FieldImages   FieldKind = "images"
	FieldBool     FieldKind = "bool"
	FieldURL      FieldKind = "url"
	FieldHidden   FieldKind = "hidden"
)

// Field describes one content key of a page type
type Field struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required,omitempty"`
	// MaxItems bounds list fields; zero means unbounded.
	MaxItems int `json:"max_items,omitempty"`
}

// Capped reports whether free text in this field is cut at MaxMessageLength
func (f Field) Capped() bool {
	return f.Kind == FieldText || f.Kind == FieldTextArea || f.Kind == FieldList
}

// TypeConfig is the registry entry for one page type
type TypeConfig struct {
	ID          models.PageType `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Fields      []Field         `json:"fields"`
}

// FieldNames returns the recognised content keys in form order
func (t TypeConfig) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a field by name
func (t TypeConfig) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var (
	receiverName = Field{Name: "receiverName", Kind: FieldText, Required: true}
	signature    = Field{Name: "signature", Kind: FieldText}
	songLink     = Field{Name: "songLink", Kind: FieldURL}
	theme        = Field{Name: "theme", Kind: FieldChoice}
)

var pageTypes = []TypeConfig{
	{
		ID:          models.PageTypeMemory,
		Title:       "Memory Page",
		Description: "Share memories with photos and captions",
		Fields: []Field{
			receiverName,
			{Name: "images", Kind: FieldImages, MaxItems: MaxImages},
			{Name: "captions", Kind: FieldList, MaxItems: MaxImages},
			{Name: "closingMessage", Kind: FieldTextArea},
		},
	},
	{
		ID:          models.PageTypeValentine,
		Title:       "Will You Be My Valentine?",
		Description: "The classic proposal with a playful twist",
		Fields: []Field{
			receiverName,
			{Name: "questionText", Kind: FieldText},
			{Name: "yesButtonText", Kind: FieldText},
			{Name: "noButtonText", Kind: FieldText},
			songLink,
		},
	},
	{
		ID:          models.PageTypeValentineWish,
		Title:       "Valentine's Day Wish",
		Description: "Send beautiful Valentine's Day wishes",
		Fields: []Field{
			receiverName,
			{Name: "wishType", Kind: FieldChoice},
			{Name: "customMessage", Kind: FieldTextArea},
			signature,
			songLink,
		},
	},
	{
		ID:          models.PageTypeAnonymous,
		Title:       "Anonymous Inbox",
		Description: "Share feelings without revealing your identity",
		Fields: []Field{
			{Name: "prompt", Kind: FieldTextArea},
			{Name: "message", Kind: FieldTextArea},
			{Name: "hint", Kind: FieldText},
			{Name: "allowReply", Kind: FieldBool},
			{Name: models.OwnerTokenKey, Kind: FieldHidden},
		},
	},
	{
		ID:          models.PageTypeBirthday,
		Title:       "Birthday Page",
		Description: "A beautiful birthday page with a heartfelt note",
		Fields: []Field{
			receiverName,
			{Name: "birthdayDate", Kind: FieldDate},
			{Name: "age", Kind: FieldNumber},
			{Name: "customMessage", Kind: FieldTextArea},
			signature,
			theme,
			songLink,
		},
	},
	{
		ID:          models.PageTypeBirthdayAdvance,
		Title:       "Birthday In Advance",
		Description: "A premium birthday plan with countdown and surprises",
		Fields: []Field{
			receiverName,
			{Name: "birthdayDate", Kind: FieldDate},
			{Name: "countdown", Kind: FieldBool},
			{Name: "countdownMessage", Kind: FieldText},
			{Name: "planHighlights", Kind: FieldTextArea},
			{Name: "surpriseNote", Kind: FieldTextArea},
			{Name: "giftIdeas", Kind: FieldList},
			{Name: "playlistLink", Kind: FieldURL},
			theme,
			songLink,
		},
	},
}

// Types returns every supported page type in display order
func Types() []TypeConfig {
	return append([]TypeConfig(nil), pageTypes...)
}

// Lookup returns the registry entry for a type id. Unknown and legacy ids
// report false; callers show an "invalid type" state.
func Lookup(id models.PageType) (TypeConfig, bool) {
	for _, t := range pageTypes {
		if t.ID == id {
			return t, true
		}
	}
	return TypeConfig{}, false
}

// Truncate cuts s to MaxMessageLength runes
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxMessageLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxMessageLength])
}
