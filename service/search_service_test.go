package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"studiotributario-backend/models"
	"studiotributario-backend/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchSession(t *testing.T, patch models.SearchFiltersPatch) *session.Session {
	t.Helper()
	sess := session.New()
	sess.Credentials.SearchAPIKey = "pplx-test"
	require.NoError(t, sess.Filters.Apply(patch))
	return sess
}

func fullFilters() models.SearchFiltersPatch {
	return models.SearchFiltersPatch{
		Keywords:     ptr("credito d'imposta"),
		DocumentType: ptr(models.DocumentTypeJudgment),
		Year:         ptr(2024),
		CourtLevel:   ptr(models.CourtLevelFirstInstance),
		Venue:        ptr("Milano"),
		Outcome:      ptr(models.OutcomeFavorableToTaxpayer),
	}
}

func TestRunSequential_KeywordsOnly(t *testing.T) {
	client := &fakeSearchClient{}
	svc := NewSearchService(SearchWithClient(client))
	sess := newSearchSession(t, models.SearchFiltersPatch{Keywords: ptr("incompetenza territoriale")})

	res, err := svc.RunSequential(context.Background(), sess, RunSearchRequest{})
	require.NoError(t, err)

	require.Len(t, res.Results, 1)
	assert.Equal(t, models.StepBase, res.Results[0].Kind)
	assert.Equal(t, `Ricerca base: parole chiave "incompetenza territoriale"`, res.Results[0].Label)
	assert.Equal(t, "risposta 1", res.Results[0].ResponseText)
	assert.Equal(t, 3, res.ConversationTurns)
	assert.False(t, res.Suppressed)

	require.Equal(t, 1, client.callCount())
	assert.Equal(t, "pplx-test", client.tokens[0])
	require.Len(t, client.calls[0], 2)
	assert.Equal(t, models.RoleSystem, client.calls[0][0].Role)
	assert.Equal(t, SearchSystemPrompt, client.calls[0][0].Content)
}

func TestRunSequential_ReplaysGrowingConversation(t *testing.T) {
	client := &fakeSearchClient{}
	svc := NewSearchService(SearchWithClient(client))
	sess := newSearchSession(t, fullFilters())

	res, err := svc.RunSequential(context.Background(), sess, RunSearchRequest{})
	require.NoError(t, err)

	require.Len(t, res.Results, 3)
	for i, kind := range []models.StepKind{models.StepBase, models.StepTypeYear, models.StepAdvanced} {
		assert.Equal(t, kind, res.Results[i].Kind)
		assert.Equal(t, i+1, res.Results[i].Step)
	}
	assert.Equal(t, 7, res.ConversationTurns)
	assert.Equal(t, 7, sess.Conversation.Len())

	require.Equal(t, 3, client.callCount())
	for i, call := range client.calls {
		assert.Len(t, call, 2+2*i, "call %d carries the full history", i+1)
	}
	// the third call sees the first two replies
	assert.Equal(t, "risposta 1", client.calls[2][2].Content)
	assert.Equal(t, "risposta 2", client.calls[2][4].Content)
	assert.Equal(t, models.RoleAssistant, client.calls[2][4].Role)
}

func TestRunSequential_MissingCredentialKeepsPreviousResults(t *testing.T) {
	client := &fakeSearchClient{}
	svc := NewSearchService(SearchWithClient(client))
	sess := newSearchSession(t, fullFilters())

	_, err := svc.RunSequential(context.Background(), sess, RunSearchRequest{})
	require.NoError(t, err)
	before := svc.Results(sess)
	conv := sess.Conversation

	sess.Credentials.SearchAPIKey = ""
	_, err = svc.RunSequential(context.Background(), sess, RunSearchRequest{})
	assert.ErrorIs(t, err, ErrMissingCredential)

	assert.Equal(t, 3, client.callCount(), "no call without a token")
	assert.Equal(t, before, svc.Results(sess))
	assert.Same(t, conv, sess.Conversation)
	assert.Equal(t, 7, sess.Conversation.Len())
}

func TestRunSequential_UnreadableDocumentDoesNotBlockSearch(t *testing.T) {
	client := &fakeSearchClient{}
	svc := NewSearchService(SearchWithClient(client))
	docs := NewDocumentService()
	sess := newSearchSession(t, models.SearchFiltersPatch{Keywords: ptr("notifica a mezzo PEC")})

	st, err := docs.UploadChallenged(sess, UploadFile{
		Filename: "scansione.pdf",
		MimeType: "application/pdf",
		Data:     []byte("%PDF-1.4 scanned image only"),
	})
	require.NoError(t, err)
	assert.False(t, st.Readable)
	assert.NotEmpty(t, st.Warning)

	res, err := svc.RunSequential(context.Background(), sess, RunSearchRequest{})
	require.NoError(t, err)
	assert.Len(t, res.Results, 1)
}

func TestRunSequential_BlankKeywordsSuppressed(t *testing.T) {
	client := &fakeSearchClient{}
	svc := NewSearchService(SearchWithClient(client))
	sess := newSearchSession(t, models.SearchFiltersPatch{Keywords: ptr("IRAP")})

	_, err := svc.RunSequential(context.Background(), sess, RunSearchRequest{})
	require.NoError(t, err)
	require.NoError(t, sess.Filters.Apply(models.SearchFiltersPatch{Keywords: ptr("")}))

	res, err := svc.RunSequential(context.Background(), sess, RunSearchRequest{})
	require.NoError(t, err)
	assert.True(t, res.Suppressed)
	assert.Empty(t, res.Results)
	assert.Equal(t, 1, client.callCount())
	assert.Len(t, sess.Results, 1, "previous results stay")
	assert.Equal(t, 3, res.ConversationTurns)
}

func TestRunSequential_FailureStopsAndKeepsCompletedSteps(t *testing.T) {
	client := &fakeSearchClient{failAt: 2, err: errors.New("connection reset")}
	svc := NewSearchService(SearchWithClient(client))
	sess := newSearchSession(t, fullFilters())

	res, err := svc.RunSequential(context.Background(), sess, RunSearchRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchUnavailable)

	require.NotNil(t, res)
	require.Len(t, res.Results, 1)
	assert.Equal(t, models.StepBase, res.Results[0].Kind)
	require.NotNil(t, res.FailedStep)
	assert.Equal(t, 2, res.FailedStep.Step)
	assert.Equal(t, 3, res.PlannedSteps)
	assert.Equal(t, 3, res.ConversationTurns, "the failed exchange is not committed")
	assert.Equal(t, 2, client.callCount(), "later steps are not attempted")
}

func TestRunSequential_RerunReplacesResults(t *testing.T) {
	client := &fakeSearchClient{}
	svc := NewSearchService(SearchWithClient(client))
	sess := newSearchSession(t, fullFilters())

	for i := 0; i < 2; i++ {
		_, err := svc.RunSequential(context.Background(), sess, RunSearchRequest{})
		require.NoError(t, err)
	}
	assert.Len(t, sess.Results, 3)
	assert.Equal(t, 7, sess.Conversation.Len())
	assert.Len(t, client.calls[3], 2, "a new run starts a new conversation")
}

func TestRunSequential_ExtractMaxims(t *testing.T) {
	client := &fakeSearchClient{}
	svc := NewSearchService(SearchWithClient(client))
	sess := newSearchSession(t, fullFilters())

	res, err := svc.RunSequential(context.Background(), sess, RunSearchRequest{ExtractMaxims: true})
	require.NoError(t, err)
	require.Len(t, res.Results, 4)
	assert.Equal(t, models.StepMaxims, res.Results[3].Kind)
	assert.Equal(t, 9, res.ConversationTurns)
}

func TestRunSequential_StepTimeout(t *testing.T) {
	svc := NewSearchService(
		SearchWithClient(blockingSearchClient{}),
		SearchWithStepTimeout(20*time.Millisecond),
	)
	sess := newSearchSession(t, models.SearchFiltersPatch{Keywords: ptr("IMU")})

	res, err := svc.RunSequential(context.Background(), sess, RunSearchRequest{})
	assert.ErrorIs(t, err, ErrSearchUnavailable)
	assert.Empty(t, res.Results)
}

func TestRunSequential_CanceledByCaller(t *testing.T) {
	svc := NewSearchService(SearchWithClient(blockingSearchClient{}))
	sess := newSearchSession(t, models.SearchFiltersPatch{Keywords: ptr("IMU")})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := svc.RunSequential(ctx, sess, RunSearchRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSearchUnavailable)
}
