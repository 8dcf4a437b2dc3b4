package topic

import "strings"

// Normalize converts a channel item into an embeddable document. Title and
// description form the content; when both are blank the URL is used instead.
func Normalize(item ChannelItem) TopicDocument {
	content := strings.TrimSpace(item.Title + "\n\n" + item.Description)
	if content == "" {
		content = item.URL
	}

	return TopicDocument{
		SourceID: item.ID,
		Content:  content,
		Metadata: Metadata{
			MetaTitle:       item.Title,
			MetaDescription: item.Description,
			MetaURL:         item.URL,
		},
	}
}

// NormalizeAll drops nil items and normalizes the rest, preserving order.
func NormalizeAll(items []*ChannelItem) []TopicDocument {
	documents := make([]TopicDocument, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		documents = append(documents, Normalize(*item))
	}
	return documents
}
