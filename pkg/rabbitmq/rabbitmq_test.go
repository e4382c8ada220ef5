package rabbitmq_test

import (
	"testing"

	"datafarm/internal/services"
	"datafarm/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
)

// The client is what the services publish through; keep the signatures in
// lockstep.
var _ services.EventPublisher = (*rabbitmq.Client)(nil)

func TestPublishWithoutChannel(t *testing.T) {
	var c rabbitmq.Client

	err := c.Publish(rabbitmq.KeyUserRegistered, []byte(`{}`))
	assert.Error(t, err)

	err = c.ConsumeEvents(nil)
	assert.Error(t, err)
}
