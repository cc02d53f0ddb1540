package brand

import (
	"fmt"
	"sort"
	"strings"
)

// Brand is a named configuration bundle selected per chat request: system
// prompt, company background, quick-question cards and whether the brand
// requires an authenticated session. Plain data, no behaviour hierarchy.
type Brand struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	SystemPrompt   string            `json:"-"`
	CompanyInfo    string            `json:"-"`
	QuickQuestions []string          `json:"quickQuestions"`
	WelcomeMessage string            `json:"welcomeMessage"`
	RequireAuth    bool              `json:"requireAuth"`
	Styles         map[string]string `json:"-"`
}

const DefaultBrandID = "creative_tech"

const defaultStyle = "default"

var catalog = map[string]Brand{
	"creative_tech": {
		ID:          "creative_tech",
		Name:        "Creative Intelligence Technology",
		Description: "MarTech marketing technology solutions",
		SystemPrompt: `You are the professional AI assistant of Creative Intelligence Technology.

Role: a friendly, professional assistant for a MarTech company.
Rules:
1. Answer in Traditional Chinese.
2. Keep answers under 50 characters.
3. No emoji, no markdown syntax.
4. Give accurate, practical information.`,
		CompanyInfo: `Company: Creative Intelligence Technology, a Taiwanese MarTech company.
Products: CDP customer data platform, AI virtual humans (2D/3D), 24/7 chatbot
customer service, AIGC video production, social media management.`,
		QuickQuestions: []string{
			"What can an AI virtual human do for my brand?",
			"How does the AITAGO platform help with LINE marketing?",
			"What kind of videos can AIGC content creation produce?",
		},
		WelcomeMessage: "Hello! I am the Creative Intelligence Technology AI assistant, specialized in MarTech solutions.",
		RequireAuth:    false,
		Styles: map[string]string{
			defaultStyle:   "",
			"professional": "Use a formal, consultative tone.",
			"casual":       "Use a relaxed, conversational tone.",
		},
	},
	"probiotics": {
		ID:          "probiotics",
		Name:        "Xiao Yi Probiotics",
		Description: "Functional probiotics for gut health and immune balance",
		SystemPrompt: `You are Xiao Yi, a probiotics health advisor.

Role: a warm, knowledgeable consultant for gut health.
Rules:
1. Answer in Traditional Chinese.
2. Keep answers under 50 characters.
3. No emoji, no markdown syntax.
4. Recommend the product line matching the customer's situation.
5. Never give medical diagnoses; suggest seeing a doctor for symptoms.`,
		CompanyInfo: `Product lines: Vitality series (students, focus and digestion), Workplace
series (office workers, stress and gut function), LOHAS series (seniors,
gentle overall care), Family pack (combines all three series).
Member services: health consultation, scheduled delivery, birthday offers.`,
		QuickQuestions: []string{
			"Which probiotics series suits an office worker?",
			"Can the whole family share one product?",
			"How long until probiotics take effect?",
		},
		WelcomeMessage: "Hello! I am Xiao Yi, your probiotics health advisor.",
		RequireAuth:    true,
		Styles: map[string]string{
			defaultStyle: "",
			"caring":     "Use an especially gentle, caring tone.",
		},
	},
}

// Get resolves a brand id, falling back to the default brand for an empty id.
func Get(id string) (Brand, bool) {
	if id == "" {
		id = DefaultBrandID
	}
	b, ok := catalog[id]
	return b, ok
}

// List returns every registered brand in stable id order.
func List() []Brand {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Brand, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog[id])
	}
	return out
}

// Prompt assembles the full LLM prompt for one user turn. Unknown styles
// fall back to the brand's default style.
func (b Brand) Prompt(userInput, style string) string {
	var sb strings.Builder
	sb.WriteString(b.SystemPrompt)
	sb.WriteString("\n\n")
	sb.WriteString(b.CompanyInfo)

	if tone, ok := b.Styles[style]; ok && tone != "" {
		sb.WriteString("\n\n")
		sb.WriteString(tone)
	}

	fmt.Fprintf(&sb, "\n\nUser: %s\nAssistant: ", userInput)
	return sb.String()
}
