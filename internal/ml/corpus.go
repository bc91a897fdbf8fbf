package ml

import (
	"sort"
	"strings"

	"github.com/lumeva/reckon/pkg/models"
)

// BuildCorpus flattens each catalog item into one text document: title,
// bullet snippets and every contextual annotation phrase, space-joined.
// Annotation contexts are walked in sorted order so the corpus is stable
// across rebuilds. An item with no text at all falls back to its own ID, so
// every item enters the vocabulary.
func BuildCorpus(items []models.Item) map[string]string {
	corpus := make(map[string]string, len(items))
	for _, item := range items {
		parts := make([]string, 0, 1+len(item.Bullets)+len(item.Annotations))
		if item.Title != "" {
			parts = append(parts, item.Title)
		}
		for _, bullet := range item.Bullets {
			if bullet != "" {
				parts = append(parts, bullet)
			}
		}

		contexts := make([]string, 0, len(item.Annotations))
		for context := range item.Annotations {
			contexts = append(contexts, context)
		}
		sort.Strings(contexts)
		for _, context := range contexts {
			if phrase := item.Annotations[context]; phrase != "" {
				parts = append(parts, phrase)
			}
		}

		if len(parts) == 0 {
			parts = append(parts, item.ID)
		}
		corpus[item.ID] = strings.Join(parts, " ")
	}
	return corpus
}
