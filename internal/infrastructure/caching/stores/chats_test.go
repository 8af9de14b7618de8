package stores

import (
	"testing"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/chat"
	"github.com/AzurNet/azurnet-go/internal/domain/intent"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChatStore() *ChatStore {
	return NewChatStore(intent.NewClassifier(), logging.NewDiscardLogger())
}

func TestStartChatSession(t *testing.T) {
	cs := newTestChatStore()

	session := cs.Start("fp-1", "Claire", "0601020304", "mobile", "Safari", &chat.Location{Country: "France", City: "Nice"}, storeNow)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "fp-1", session.Fingerprint)
	assert.Equal(t, intent.CategoryOther, session.Intent, "intent starts at the catch-all")
	assert.Empty(t, session.Messages)
	assert.Nil(t, session.EndedAt)

	byFp := cs.SessionsByFingerprint("fp-1")
	require.Len(t, byFp, 1)
	assert.Equal(t, session.ID, byFp[0].ID)
}

func TestAppendMessageRecomputesIntentOnUserMessages(t *testing.T) {
	cs := newTestChatStore()
	session := cs.Start("fp-1", "", "", "", "", nil, storeNow)

	updated, ok := cs.AppendMessage(session.ID, chat.SenderUser, "Bonjour", storeNow)
	require.True(t, ok)
	assert.Equal(t, intent.CategoryOther, updated.Intent)
	assert.Equal(t, 1, updated.MessageCount)

	updated, ok = cs.AppendMessage(session.ID, chat.SenderUser, "Quel est le prix pour un nettoyage de bureau ?", storeNow)
	require.True(t, ok)
	assert.Equal(t, intent.CategoryPrice, updated.Intent)
	assert.Equal(t, 2, updated.MessageCount)
}

func TestAppendMessageIgnoresAssistantTextForIntent(t *testing.T) {
	cs := newTestChatStore()
	session := cs.Start("fp-1", "", "", "", "", nil, storeNow)

	// Assistant mentions prices; the session intent must not move.
	updated, ok := cs.AppendMessage(session.ID, chat.SenderAssistant, "Nos prix démarrent à 30 euros.", storeNow)
	require.True(t, ok)
	assert.Equal(t, intent.CategoryOther, updated.Intent)
	assert.Equal(t, 1, updated.MessageCount)
}

func TestAppendMessageUnknownSession(t *testing.T) {
	cs := newTestChatStore()

	_, ok := cs.AppendMessage("missing", chat.SenderUser, "hello", storeNow)
	assert.False(t, ok)
}

func TestSetUserInfoKeepsExistingOnEmpty(t *testing.T) {
	cs := newTestChatStore()
	session := cs.Start("fp-1", "Claire", "", "", "", nil, storeNow)

	require.True(t, cs.SetUserInfo(session.ID, "", "0601020304"))

	got, ok := cs.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, "Claire", got.Name, "empty name leaves the old value")
	assert.Equal(t, "0601020304", got.Phone)

	assert.False(t, cs.SetUserInfo("missing", "X", "Y"))
}

func TestEndChatSession(t *testing.T) {
	cs := newTestChatStore()
	session := cs.Start("fp-1", "", "", "", "", nil, storeNow)

	ended, ok := cs.End(session.ID, storeNow.Add(90*time.Second))
	require.True(t, ok)
	require.NotNil(t, ended.EndedAt)
	assert.Equal(t, int64(90), ended.Duration)

	// Ending twice, or ending a missing session, is a no-op.
	_, ok = cs.End(session.ID, storeNow.Add(3*time.Minute))
	assert.False(t, ok)
	_, ok = cs.End("missing", storeNow)
	assert.False(t, ok)
}

func TestReclassifyAll(t *testing.T) {
	cs := newTestChatStore()

	s1 := cs.Start("fp-1", "", "", "", "", nil, storeNow)
	cs.AppendMessage(s1.ID, chat.SenderUser, "je voudrais un devis", storeNow)

	s2 := cs.Start("fp-2", "", "", "", "", nil, storeNow)
	cs.AppendMessage(s2.ID, chat.SenderUser, "bonjour", storeNow)

	// Nothing changed since classification already ran on append.
	assert.Equal(t, 0, cs.ReclassifyAll())

	// Simulate a snapshot from before intent classification existed.
	state := cs.Export()
	for id, session := range state.Sessions {
		session.Intent = ""
		state.Sessions[id] = session
	}
	restored := newTestChatStore()
	restored.Import(state)

	// Import defaults the empty intent, reclassify re-derives the real one.
	changed := restored.ReclassifyAll()
	assert.Equal(t, 1, changed)

	got, ok := restored.Get(s1.ID)
	require.True(t, ok)
	assert.Equal(t, intent.CategoryQuote, got.Intent)
}

func TestChatMutationHook(t *testing.T) {
	cs := newTestChatStore()
	fired := 0
	cs.SetMutationHook(func() { fired++ })

	session := cs.Start("fp-1", "", "", "", "", nil, storeNow)
	cs.AppendMessage(session.ID, chat.SenderUser, "bonjour", storeNow)
	cs.SetUserInfo(session.ID, "Claire", "")
	cs.End(session.ID, storeNow.Add(time.Minute))

	assert.Equal(t, 4, fired)

	cs.Sessions()
	cs.Get(session.ID)
	assert.Equal(t, 4, fired, "reads never fire the hook")
}

func TestChatExportImportRoundTrip(t *testing.T) {
	cs := newTestChatStore()
	session := cs.Start("fp-1", "Claire", "0601020304", "mobile", "Safari", &chat.Location{Country: "France", City: "Nice"}, storeNow)
	cs.AppendMessage(session.ID, chat.SenderUser, "Quel est le prix ?", storeNow)
	cs.AppendMessage(session.ID, chat.SenderAssistant, "Nos tarifs dépendent de la surface.", storeNow)

	state := cs.Export()

	restored := newTestChatStore()
	restored.Import(state)

	got, ok := restored.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, "Claire", got.Name)
	assert.Equal(t, intent.CategoryPrice, got.Intent)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chat.SenderUser, got.Messages[0].Sender)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Nice", got.Location.City)

	assert.Len(t, restored.SessionsByFingerprint("fp-1"), 1)
}
