// Package moods holds the static mood catalog. The catalog is immutable
// process-wide data; entries copy the resolved id and score at write time so
// catalog changes never affect history.
package moods

import (
	"sort"
	"strings"
)

// Definition describes one selectable mood.
type Definition struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Emoji       string `json:"emoji"`
	Score       int    `json:"score"` // 1 (worst) .. 10 (best)
	SearchQuery string `json:"-"`     // image-provider keyword
	Prompt      string `json:"prompt"`
	Color       string `json:"color"`
}

// catalog is keyed by the uppercase mood keyword.
var catalog = map[string]Definition{
	"OVERJOYED": {
		ID:          "overjoyed",
		Label:       "Overjoyed",
		Emoji:       "🤗",
		Score:       10,
		SearchQuery: "celebration+fireworks",
		Prompt:      "What's making you feel absolutely amazing today?",
		Color:       "amber",
	},
	"HAPPY": {
		ID:          "happy",
		Label:       "Happy",
		Emoji:       "😊",
		Score:       9,
		SearchQuery: "sunny+meadow",
		Prompt:      "What made you smile today?",
		Color:       "yellow",
	},
	"EXCITED": {
		ID:          "excited",
		Label:       "Excited",
		Emoji:       "🤩",
		Score:       8,
		SearchQuery: "adventure+mountain",
		Prompt:      "What are you looking forward to?",
		Color:       "orange",
	},
	"CONTENT": {
		ID:          "content",
		Label:       "Content",
		Emoji:       "😌",
		Score:       7,
		SearchQuery: "cozy+home",
		Prompt:      "What's bringing you peace right now?",
		Color:       "green",
	},
	"NEUTRAL": {
		ID:          "neutral",
		Label:       "Neutral",
		Emoji:       "😐",
		Score:       5,
		SearchQuery: "calm+lake",
		Prompt:      "How has your day been going?",
		Color:       "slate",
	},
	"ANXIOUS": {
		ID:          "anxious",
		Label:       "Anxious",
		Emoji:       "😰",
		Score:       4,
		SearchQuery: "stormy+clouds",
		Prompt:      "What's on your mind that's causing worry?",
		Color:       "indigo",
	},
	"STRESSED": {
		ID:          "stressed",
		Label:       "Stressed",
		Emoji:       "😫",
		Score:       3,
		SearchQuery: "tangled+rope",
		Prompt:      "What's overwhelming you at the moment?",
		Color:       "purple",
	},
	"SAD": {
		ID:          "sad",
		Label:       "Sad",
		Emoji:       "😢",
		Score:       2,
		SearchQuery: "rainy+window",
		Prompt:      "What's weighing on your heart?",
		Color:       "blue",
	},
	"ANGRY": {
		ID:          "angry",
		Label:       "Angry",
		Emoji:       "😠",
		Score:       1,
		SearchQuery: "thunder+storm",
		Prompt:      "What's frustrating you, and why?",
		Color:       "red",
	},
}

// Lookup resolves a mood keyword case-insensitively.
func Lookup(keyword string) (Definition, bool) {
	def, ok := catalog[strings.ToUpper(strings.TrimSpace(keyword))]
	return def, ok
}

// ByID resolves a persisted mood id (lowercase) back to its definition.
func ByID(id string) (Definition, bool) {
	return Lookup(id)
}

// All returns every definition, highest score first.
func All() []Definition {
	out := make([]Definition, 0, len(catalog))
	for _, def := range catalog {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
