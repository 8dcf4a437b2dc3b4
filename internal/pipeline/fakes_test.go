package pipeline

import (
	"context"

	"horse.fit/topicsearch/internal/topic"
)

type fakeCollector struct {
	items []*topic.ChannelItem
	err   error
	calls int
}

func (c *fakeCollector) FetchAll(context.Context) ([]*topic.ChannelItem, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.items, nil
}

type searchCall struct {
	query string
	topK  int
}

type fakeIndex struct {
	matches     []topic.RetrievedMatch
	searchErr   error
	upsertErr   error
	upserts     [][]topic.TopicDocument
	searchCalls []searchCall
}

func (i *fakeIndex) Upsert(_ context.Context, documents []topic.TopicDocument) error {
	i.upserts = append(i.upserts, documents)
	return i.upsertErr
}

func (i *fakeIndex) Search(_ context.Context, query string, topK int) ([]topic.RetrievedMatch, error) {
	i.searchCalls = append(i.searchCalls, searchCall{query: query, topK: topK})
	if i.searchErr != nil {
		return nil, i.searchErr
	}
	return i.matches, nil
}

type completeCall struct {
	system string
	user   string
}

type fakeGenerator struct {
	reply string
	err   error
	calls []completeCall
}

func (g *fakeGenerator) Complete(_ context.Context, systemInstruction, userMessage string) (string, error) {
	g.calls = append(g.calls, completeCall{system: systemInstruction, user: userMessage})
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}
