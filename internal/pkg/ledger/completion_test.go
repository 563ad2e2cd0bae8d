package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
)

func TestIsCompleteRequiresEveryActionType(t *testing.T) {
	svc, _, records := newTestLedger()
	required := []string{models.ActionTypeFollow, models.ActionTypeLike, models.ActionTypeRetweet}

	complete, err := svc.IsComplete("actor-1", required)
	require.NoError(t, err)
	assert.False(t, complete)

	records.seed("actor-1", "user-5", models.ActionTypeFollow, `{"data":{"following":true}}`, "", time.Minute)
	records.seed("actor-1", "tweet-9", models.ActionTypeLike, `{"data":{"liked":true}}`, "", time.Minute)

	complete, err = svc.IsComplete("actor-1", required)
	require.NoError(t, err)
	assert.False(t, complete)

	records.seed("actor-1", "tweet-9", models.ActionTypeRetweet, `{"data":{"retweeted":true}}`, "", time.Minute)

	complete, err = svc.IsComplete("actor-1", required)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestIsCompleteIgnoresFreshness(t *testing.T) {
	svc, _, records := newTestLedger()

	// Records well past the idempotency window still count for completion.
	records.seed("actor-1", "user-5", models.ActionTypeFollow, `{"data":{"following":true}}`, "", 48*time.Hour)

	complete, err := svc.IsComplete("actor-1", []string{models.ActionTypeFollow})
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestIsCompleteIgnoresFailedRecords(t *testing.T) {
	svc, _, records := newTestLedger()
	records.seed("actor-1", "user-5", models.ActionTypeFollow, "", "403 forbidden", time.Minute)

	complete, err := svc.IsComplete("actor-1", []string{models.ActionTypeFollow})
	require.NoError(t, err)
	assert.False(t, complete)
}

func TestIsCompleteEmptyRequiredSet(t *testing.T) {
	svc, _, _ := newTestLedger()

	complete, err := svc.IsComplete("actor-1", nil)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestIsCompleteStorageFailure(t *testing.T) {
	svc, _, records := newTestLedger()
	records.failing = true

	_, err := svc.IsComplete("actor-1", []string{models.ActionTypeFollow})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeStorageUnavailable, apperr.CodeOf(err))
}

func TestIsCompleteRequiresActorID(t *testing.T) {
	svc, _, _ := newTestLedger()

	_, err := svc.IsComplete("", []string{models.ActionTypeFollow})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}
