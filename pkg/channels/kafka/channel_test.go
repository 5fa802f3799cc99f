package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsumerGroup_DefaultsToEngineSuffix(t *testing.T) {
	t.Setenv("KAFKA_CONSUMER_GROUP", "")

	assert.Equal(t, "crewline-automation-engine", consumerGroup("crewline-automation"))
}

func TestConsumerGroup_EnvOverride(t *testing.T) {
	t.Setenv("KAFKA_CONSUMER_GROUP", "staging-engines")

	assert.Equal(t, "staging-engines", consumerGroup("crewline-automation"))
}

func TestSplitBrokers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, splitBrokers("k1:9092, k2:9092"))
	assert.Equal(t, []string{"k1:9092"}, splitBrokers("k1:9092,"))
	assert.Empty(t, splitBrokers(""))
	assert.Empty(t, splitBrokers(" , "))
}
