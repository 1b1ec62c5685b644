package service

import (
	"context"
	"fmt"
	"sync"

	"studiotributario-backend/models"
)

// fakeSearchClient records every conversation it receives
type fakeSearchClient struct {
	mu     sync.Mutex
	calls  [][]models.ConversationTurn
	tokens []string
	failAt int // 1-based call that fails, 0 for none
	err    error
}

func (f *fakeSearchClient) Complete(ctx context.Context, token string, turns []models.ConversationTurn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := make([]models.ConversationTurn, len(turns))
	copy(cp, turns)
	f.calls = append(f.calls, cp)
	f.tokens = append(f.tokens, token)

	n := len(f.calls)
	if n == f.failAt {
		return "", f.err
	}
	return fmt.Sprintf("risposta %d", n), nil
}

func (f *fakeSearchClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// blockingSearchClient waits until the call context is done
type blockingSearchClient struct{}

func (blockingSearchClient) Complete(ctx context.Context, _ string, _ []models.ConversationTurn) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type fakeGenerator struct {
	inputs []GenerateInput
	keys   []string
	reply  string
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, apiKey string, in GenerateInput) (string, error) {
	f.inputs = append(f.inputs, in)
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
