package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"studiotributario-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTurns = []models.ConversationTurn{
	{Role: models.RoleSystem, Content: "sys"},
	{Role: models.RoleUser, Content: "cerca"},
}

func TestPerplexityClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer pplx-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sonar-test", body.Model)
		assert.InDelta(t, 0.1, body.Temperature, 1e-9)
		assert.Equal(t, testTurns, body.Messages)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Trovati 12 documenti  "}}]}`))
	}))
	defer srv.Close()

	client := NewPerplexityClient(srv.URL, "sonar-test", 0.1, time.Second)
	reply, err := client.Complete(context.Background(), "pplx-key", testTurns)
	require.NoError(t, err)
	assert.Equal(t, "Trovati 12 documenti", reply)
}

func TestPerplexityClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"invalid key"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "malformed body", status: http.StatusOK, body: `{"choices":`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "empty reply", status: http.StatusOK, body: `{"choices":[{"message":{"content":"   "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewPerplexityClient(srv.URL, "", 0, time.Second)
			_, err := client.Complete(context.Background(), "key", testTurns)
			assert.ErrorIs(t, err, ErrSearchUnavailable)
		})
	}
}

func TestPerplexityClient_MissingTokenMakesNoCall(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client := NewPerplexityClient(srv.URL, "", 0, time.Second)
	_, err := client.Complete(context.Background(), "", testTurns)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Zero(t, hits.Load())
}

func TestPerplexityClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewPerplexityClient(url, "", 0, time.Second)
	_, err := client.Complete(context.Background(), "key", testTurns)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}
