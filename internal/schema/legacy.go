package schema

import "emo-pages-backend/internal/models"

// LegacyTypeKey records which retired type a migrated page came from
const LegacyTypeKey = "legacyType"

// QAQuestions are the prompts the retired qa form asked, in answer order
var QAQuestions = []string{
	"What's your favorite memory together?",
	"What do you love most about them?",
	"What are you looking forward to?",
}

// MigrateLegacy rewrites pages stored under the retired message and qa types
// into memory pages. No content key is dropped: the memory renderer reads the
// legacy keys (title, message, backgroundStyle, answers, finalNote) as well.
// It reports whether the page was changed.
func MigrateLegacy(p *models.Page) bool {
	var closing string
	switch p.Type {
	case models.PageTypeLegacyMessage:
		closing = p.Content.String("message")
	case models.PageTypeLegacyQA:
		closing = p.Content.String("finalNote")
	default:
		return false
	}

	content := p.Content.Clone()
	content[LegacyTypeKey] = string(p.Type)
	if content.String("closingMessage") == "" && closing != "" {
		content["closingMessage"] = closing
	}

	p.Content = content
	p.Type = models.PageTypeMemory
	return true
}
