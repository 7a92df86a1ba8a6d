package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"unicode/utf8"

	"emo-pages-backend/internal/models"
	"emo-pages-backend/internal/schema"
)

// BuilderStep is the wizard position of a Builder
type BuilderStep string

const (
	StepToneSelection BuilderStep = "tone_selection"
	StepContentForm   BuilderStep = "content_form"
	StepSubmitting    BuilderStep = "submitting"
	StepSuccess       BuilderStep = "success"
	// StepError is the content form showing the last submit failure; it
	// accepts edits and resubmission like StepContentForm.
	StepError BuilderStep = "error"
)

// Builder walks one page through tone selection and its type-specific form.
// It is not safe for concurrent use.
type Builder struct {
	svc      *PageService
	config   schema.TypeConfig
	tone     models.Tone
	occasion models.Occasion
	content  models.Content
	step     BuilderStep
	lastErr  error
	page     *models.Page
}

// NewBuilder starts a builder for pageType. Anonymous pages are refused with
// ErrUseAnonymousFlow; unknown types with a ValidationError.
func (s *PageService) NewBuilder(pageType models.PageType) (*Builder, error) {
	if pageType == models.PageTypeAnonymous {
		return nil, models.ErrUseAnonymousFlow
	}
	cfg, ok := schema.Lookup(pageType)
	if !ok {
		return nil, &models.ValidationError{Field: "type", Reason: "invalid page type"}
	}
	return &Builder{
		svc:      s,
		config:   cfg,
		tone:     models.ToneRomantic,
		occasion: models.OccasionValentine,
		content:  models.Content{},
		step:     StepToneSelection,
	}, nil
}

// Step returns the current wizard step
func (b *Builder) Step() BuilderStep { return b.step }

// Err returns the inline error of the last failed submit
func (b *Builder) Err() error { return b.lastErr }

// Page returns the created page once the builder reached StepSuccess
func (b *Builder) Page() *models.Page { return b.page }

// Content returns a copy of the content collected so far
func (b *Builder) Content() models.Content { return b.content.Clone() }

// Config returns the registry entry driving the form
func (b *Builder) Config() schema.TypeConfig { return b.config }

// SelectTone records the tone and opens the content form
func (b *Builder) SelectTone(tone models.Tone) error {
	if b.step != StepToneSelection {
		return &models.ValidationError{Field: "tone", Reason: "tone can only be chosen on the first step"}
	}
	if !schema.ValidTone(tone) {
		return &models.ValidationError{Field: "tone", Reason: fmt.Sprintf("unknown tone %q", tone)}
	}
	b.tone = tone
	b.step = StepContentForm
	return nil
}

// Back returns from the form to tone selection, keeping the content
func (b *Builder) Back() {
	if b.editing() {
		b.step = StepToneSelection
		b.lastErr = nil
	}
}

// SetOccasion overrides the default occasion. Birthday types ignore it.
func (b *Builder) SetOccasion(occasion models.Occasion) error {
	if !schema.ValidOccasion(occasion) {
		return &models.ValidationError{Field: "occasion", Reason: fmt.Sprintf("unknown occasion %q", occasion)}
	}
	b.occasion = occasion
	return nil
}

// SetField writes one form value. Free text longer than the message limit is
// truncated, not rejected; list fields are cut to their item limit.
func (b *Builder) SetField(name string, value any) error {
	if !b.editing() {
		return &models.ValidationError{Field: name, Reason: "select a tone first"}
	}
	field, ok := b.config.Field(name)
	if !ok || field.Kind == schema.FieldHidden {
		return &models.ValidationError{Field: name, Reason: "unknown field"}
	}

	normalized, err := normalizeField(field, value)
	if err != nil {
		return err
	}
	if normalized == nil {
		delete(b.content, name)
		return nil
	}
	b.content[name] = normalized
	return nil
}

// SetContent applies SetField to every entry in name order
func (b *Builder) SetContent(content map[string]any) error {
	names := make([]string, 0, len(content))
	for name := range content {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := b.SetField(name, content[name]); err != nil {
			return err
		}
	}
	return nil
}

// Submit validates required fields and persists the page under a random
// slug. On failure the builder stays on the form with the error recorded so
// the caller can resubmit.
func (b *Builder) Submit(ctx context.Context) (*models.Page, error) {
	if !b.editing() {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("cannot submit from step %s", b.step)}
	}
	for _, f := range b.config.Fields {
		if f.Required && b.content.String(f.Name) == "" {
			err := &models.ValidationError{Field: f.Name, Reason: "is required"}
			b.lastErr = err
			return nil, err
		}
	}

	occasion := b.occasion
	if b.config.ID == models.PageTypeBirthday || b.config.ID == models.PageTypeBirthdayAdvance {
		occasion = models.OccasionBirthday
	}
	expires := b.svc.clock.Now().Add(schema.DefaultExpiry).UTC()

	b.step = StepSubmitting
	page, err := b.svc.create(ctx, &models.Page{
		Type:        b.config.ID,
		Tone:        b.tone,
		Occasion:    occasion,
		Content:     b.content.Clone(),
		IsAnonymous: b.config.ID == models.PageTypeAnonymous,
		ExpiresAt:   &expires,
	})
	if err != nil {
		b.step = StepError
		b.lastErr = err
		return nil, err
	}

	b.step = StepSuccess
	b.lastErr = nil
	b.page = page
	return page, nil
}

func (b *Builder) editing() bool {
	return b.step == StepContentForm || b.step == StepError
}

// normalizeField coerces a raw form value for field. A nil result clears the
// field.
func normalizeField(field schema.Field, value any) (any, error) {
	invalid := func(reason string) error {
		return &models.ValidationError{Field: field.Name, Reason: reason}
	}

	if value == nil {
		return nil, nil
	}

	switch field.Kind {
	case schema.FieldText, schema.FieldTextArea:
		s, ok := value.(string)
		if !ok {
			return nil, invalid("must be text")
		}
		if s == "" {
			return nil, nil
		}
		if field.Capped() {
			s = schema.Truncate(s)
		}
		return s, nil

	case schema.FieldList, schema.FieldImages:
		var items []string
		switch v := value.(type) {
		case string:
			if field.Kind == schema.FieldList {
				if v == "" {
					return nil, nil
				}
				if field.Capped() {
					v = schema.Truncate(v)
				}
				return v, nil
			}
			items = []string{v}
		case []string:
			items = v
		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, invalid("list items must be text")
				}
				items = append(items, s)
			}
		default:
			return nil, invalid("must be a list")
		}
		if field.MaxItems > 0 && len(items) > field.MaxItems {
			items = items[:field.MaxItems]
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			if field.Kind == schema.FieldImages {
				if !isHTTPURL(item) {
					return nil, invalid("images must be http(s) URLs")
				}
				if urlTooLong(item) {
					return nil, invalid(urlTooLongReason)
				}
				out = append(out, item)
				continue
			}
			if field.Capped() {
				item = schema.Truncate(item)
			}
			out = append(out, item)
		}
		return out, nil

	case schema.FieldURL:
		s, ok := value.(string)
		if !ok {
			return nil, invalid("must be a URL")
		}
		if s == "" {
			return nil, nil
		}
		if !isHTTPURL(s) {
			return nil, invalid("must be an http(s) URL")
		}
		if urlTooLong(s) {
			return nil, invalid(urlTooLongReason)
		}
		return s, nil

	case schema.FieldDate:
		s, ok := value.(string)
		if !ok {
			return nil, invalid("must be a date")
		}
		if s == "" {
			return nil, nil
		}
		if _, ok := ParseBirthdayDate(s); !ok {
			return nil, invalid("must be a date like 2006-01-02")
		}
		return s, nil

	case schema.FieldNumber:
		var n float64
		switch v := value.(type) {
		case float64:
			n = v
		case int:
			n = float64(v)
		case string:
			if v == "" {
				return nil, nil
			}
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, invalid("must be a number")
			}
			n = parsed
		default:
			return nil, invalid("must be a number")
		}
		if n < 0 {
			return nil, invalid("must not be negative")
		}
		return n, nil

	case schema.FieldChoice:
		s, ok := value.(string)
		if !ok {
			return nil, invalid("must be text")
		}
		if s == "" {
			return nil, nil
		}
		if !validChoice(field.Name, s) {
			return nil, invalid(fmt.Sprintf("unknown option %q", s))
		}
		return s, nil

	case schema.FieldBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, invalid("must be true or false")
			}
			return b, nil
		default:
			return nil, invalid("must be true or false")
		}
	}

	return nil, invalid("unsupported field")
}

func validChoice(field, value string) bool {
	switch field {
	case "wishType":
		_, ok := schema.Wish(value)
		return ok
	case "theme":
		return schema.Theme(value).ID == value
	default:
		return true
	}
}

var urlTooLongReason = fmt.Sprintf("must be at most %d characters", schema.MaxMessageLength)

// urlTooLong reports whether a link is over the free-text limit. Links are
// rejected rather than cut, since a truncated URL points somewhere else.
func urlTooLong(s string) bool {
	return utf8.RuneCountInString(s) > schema.MaxMessageLength
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
