package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsletterSubscribeConfirmUnsubscribe(t *testing.T) {
	setupTestDb(t)
	ctx := context.Background()

	sub, token, err := Subscribe(ctx, "  Reader@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", sub.Email)
	assert.Equal(t, SubscriberPending, sub.Status)
	require.NotEmpty(t, token)

	// subscribing again while pending rotates the token
	_, token2, err := Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	require.NotEqual(t, token, token2)

	_, err = ConfirmSubscription(token)
	assert.ErrorIs(t, err, ErrInvalidConfirmToken, "old token is gone")

	confirmed, err := ConfirmSubscription(token2)
	require.NoError(t, err)
	assert.Equal(t, SubscriberConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)

	_, err = ConfirmSubscription(token2)
	assert.ErrorIs(t, err, ErrInvalidConfirmToken, "tokens are single use")

	again, token3, err := Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Empty(t, token3)
	assert.Equal(t, SubscriberConfirmed, again.Status)

	require.NoError(t, Unsubscribe("READER@example.com"))
	assert.ErrorIs(t, Unsubscribe("nobody@example.com"), ErrNotFound)

	subs, err := ListSubscribers(SubscriberUnsubscribed)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	// unsubscribed readers can come back through a fresh confirmation
	back, token4, err := Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token4)
	assert.Equal(t, SubscriberPending, back.Status)
}

func TestConfirmSubscriptionEmptyToken(t *testing.T) {
	_, err := ConfirmSubscription("")
	assert.ErrorIs(t, err, ErrInvalidConfirmToken)
}
