package marketing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriber(t *testing.T) {
	s, err := NewSubscriber(" News@Example.com", "footer")
	require.NoError(t, err)
	assert.Equal(t, "news@example.com", s.Email)
	assert.Equal(t, SubscriberStatusSubscribed, s.Status)
	assert.Equal(t, "footer", s.Source)

	assert.False(t, s.Resubscribe())
	assert.True(t, s.Unsubscribe())
	assert.NotNil(t, s.UnsubscribedAt)
	assert.False(t, s.Unsubscribe())
	assert.True(t, s.Resubscribe())
	assert.Nil(t, s.UnsubscribedAt)

	_, err = NewSubscriber("not an email", "")
	assert.Error(t, err)
}
