package redis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubscriptionGroupsAreUnique(t *testing.T) {
	bus, err := NewStreamsEventBus(nil, "maestro-api", "maestro-42", zap.NewNop())
	require.NoError(t, err)

	// One consumer group per subscription: subscribers fan out instead
	// of competing for events.
	first := bus.subscriptionGroup()
	second := bus.subscriptionGroup()

	assert.True(t, strings.HasPrefix(first, "maestro-api:maestro-42:"))
	assert.True(t, strings.HasPrefix(second, "maestro-api:maestro-42:"))
	assert.NotEqual(t, first, second)
}
