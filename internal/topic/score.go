package topic

import (
	"encoding/json"
	"math"
)

// Raw metadata keys a backend may use to report relevance.
const (
	FieldDistance   = "distance"
	FieldSimilarity = "similarity"
)

// RelevanceKind tells how a backend encoded the closeness of a match.
type RelevanceKind int

const (
	RelevanceUnknown RelevanceKind = iota
	// RelevanceDistance values shrink as matches get closer.
	RelevanceDistance
	// RelevanceSimilarity values grow as matches get closer.
	RelevanceSimilarity
)

func (k RelevanceKind) String() string {
	switch k {
	case RelevanceDistance:
		return "distance"
	case RelevanceSimilarity:
		return "similarity"
	default:
		return "unknown"
	}
}

// Relevance is the relevance signal of one match, resolved once per match.
type Relevance struct {
	Kind  RelevanceKind
	Value float64
}

func Distance(value float64) Relevance {
	return Relevance{Kind: RelevanceDistance, Value: value}
}

func Similarity(value float64) Relevance {
	return Relevance{Kind: RelevanceSimilarity, Value: value}
}

// ResolveRelevance picks the relevance signal out of raw backend metadata.
// A numeric distance wins over a numeric similarity; anything else resolves
// to RelevanceUnknown.
func ResolveRelevance(fields map[string]any) Relevance {
	if value, ok := numeric(fields[FieldDistance]); ok {
		return Distance(value)
	}
	if value, ok := numeric(fields[FieldSimilarity]); ok {
		return Similarity(value)
	}
	return Relevance{}
}

// Score converts a relevance signal into a percentage in [0,100].
func Score(r Relevance) float64 {
	if math.IsNaN(r.Value) {
		return 0
	}
	switch r.Kind {
	case RelevanceDistance:
		return (1 - clampUnit(r.Value)) * 100
	case RelevanceSimilarity:
		return clampUnit(r.Value) * 100
	default:
		return 0
	}
}

// ToSimilarTopic scores a match and copies its metadata.
func ToSimilarTopic(match RetrievedMatch) SimilarTopic {
	return SimilarTopic{
		Title:       match.Metadata.Title(),
		Description: match.Metadata.Description(),
		URL:         match.Metadata.URL(),
		Similarity:  Score(match.Relevance),
	}
}

// ToSimilarTopics maps matches in order.
func ToSimilarTopics(matches []RetrievedMatch) []SimilarTopic {
	topics := make([]SimilarTopic, 0, len(matches))
	for _, match := range matches {
		topics = append(topics, ToSimilarTopic(match))
	}
	return topics
}

func clampUnit(value float64) float64 {
	return math.Max(0, math.Min(1, value))
}

func numeric(raw any) (float64, bool) {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int8:
		value = float64(v)
	case int16:
		value = float64(v)
	case int32:
		value = float64(v)
	case int64:
		value = float64(v)
	case uint:
		value = float64(v)
	case uint8:
		value = float64(v)
	case uint16:
		value = float64(v)
	case uint32:
		value = float64(v)
	case uint64:
		value = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}
	if math.IsNaN(value) {
		return 0, false
	}
	return value, true
}
