package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAlertQueues(t *testing.T) {
	queues := GetAlertQueues()

	require.NotEmpty(t, queues, "queues list should not be empty")

	first := queues[0]
	assert.Equal(t, "alerts.radar", first.QueueName)
	assert.Equal(t, "radar", first.RoutingKey)

	// Проверка уникальности QueueName
	seen := map[string]bool{}
	for _, q := range queues {
		assert.Falsef(t, seen[q.QueueName], "duplicate queue name: %s", q.QueueName)
		seen[q.QueueName] = true
	}
}
