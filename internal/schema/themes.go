package schema

import "emo-pages-backend/internal/models"

// Option is a labelled choice for tone and occasion pickers
type Option struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Tones lists the first builder step's choices
var Tones = []Option{
	{ID: string(models.ToneRomantic), Label: "Romantic", Description: "Sweet and heartfelt"},
	{ID: string(models.TonePlayful), Label: "Playful", Description: "Fun and lighthearted"},
	{ID: string(models.ToneMixed), Label: "Mixed", Description: "A bit of everything"},
}

// Occasions lists the supported occasions
var Occasions = []Option{
	{ID: string(models.OccasionValentine), Label: "Valentine's Day"},
	{ID: string(models.OccasionBirthday), Label: "Birthday"},
	{ID: string(models.OccasionOther), Label: "Something else"},
}

// ValidTone reports whether t is a known tone
func ValidTone(t models.Tone) bool {
	return hasOption(Tones, string(t))
}

// ValidOccasion reports whether o is a known occasion
func ValidOccasion(o models.Occasion) bool {
	return hasOption(Occasions, string(o))
}

func hasOption(opts []Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}

// BackgroundStyle is a selectable page background
type BackgroundStyle struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

// DefaultBackgroundClass is used when a page has no or an unknown background
const DefaultBackgroundClass = "bg-gradient-to-br from-pink-50 to-pink-100"

var backgrounds = []BackgroundStyle{
	{ID: "gradient-pink", Name: "Pink Gradient", Class: "bg-gradient-to-br from-pink-100 to-pink-200"},
	{ID: "gradient-purple", Name: "Purple Dream", Class: "bg-gradient-to-br from-purple-100 to-pink-200"},
	{ID: "gradient-sunset", Name: "Sunset", Class: "bg-gradient-to-br from-orange-100 to-pink-200"},
	{ID: "hearts", Name: "Hearts Pattern", Class: "bg-pink-50"},
	{ID: "stars", Name: "Starlight", Class: "bg-gradient-to-br from-blue-50 to-purple-100"},
}

// Backgrounds returns all background styles
func Backgrounds() []BackgroundStyle {
	return append([]BackgroundStyle(nil), backgrounds...)
}

// BackgroundClass resolves a background id, falling back to the default
func BackgroundClass(id string) string {
	for _, b := range backgrounds {
		if b.ID == id {
			return b.Class
		}
	}
	return DefaultBackgroundClass
}

// WishTemplate is a valentine wish text with a {name} placeholder
type WishTemplate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Template string `json:"template"`
}

// DefaultWish is shown when a page names no known template
const DefaultWish = "Happy Valentine's Day!"

var wishes = []WishTemplate{
	{ID: "romantic", Name: "Romantic", Template: "My dearest {name}, on this Valentine's Day, I want you to know that you are my everything..."},
	{ID: "sweet", Name: "Sweet & Simple", Template: "Happy Valentine's Day, {name}! You make every day brighter..."},
	{ID: "passionate", Name: "Passionate", Template: "{name}, my love for you burns brighter than a thousand suns..."},
	{ID: "playful", Name: "Playful", Template: "Hey {name}! Guess what? You're stuck with me on Valentine's Day..."},
	{ID: "poetic", Name: "Poetic", Template: "Like roses bloom in spring, my love for you, {name}, forever sings..."},
}

// Wishes returns all valentine wish templates
func Wishes() []WishTemplate {
	return append([]WishTemplate(nil), wishes...)
}

// Wish looks up a template by id
func Wish(id string) (WishTemplate, bool) {
	for _, w := range wishes {
		if w.ID == id {
			return w, true
		}
	}
	return WishTemplate{}, false
}

// BirthdayTheme is a background for birthday pages
type BirthdayTheme struct {
	ID    string `json:"id"`
	Class string `json:"class"`
}

var birthdayThemes = []BirthdayTheme{
	{ID: "gold", Class: "bg-gradient-to-br from-amber-50 to-rose-50"},
	{ID: "sky", Class: "bg-gradient-to-br from-sky-50 to-blue-50"},
	{ID: "garden", Class: "bg-gradient-to-br from-emerald-50 to-teal-50"},
}

// BirthdayThemes returns all birthday themes; the first is the default
func BirthdayThemes() []BirthdayTheme {
	return append([]BirthdayTheme(nil), birthdayThemes...)
}

// Theme resolves a birthday theme id; missing or unknown ids get gold
func Theme(id string) BirthdayTheme {
	for _, t := range birthdayThemes {
		if t.ID == id {
			return t
		}
	}
	return birthdayThemes[0]
}
