package health

import (
	"testing"

	"sqs-output/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

type staticChecker model.HealthStatus

func (s staticChecker) Health() model.ComponentHealthStatus {
	return model.ComponentHealthStatus{Status: model.HealthStatus(s)}
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		queue, buffer model.HealthStatus
		want          model.HealthStatus
	}{
		{model.StatusUp, model.StatusUp, model.StatusUp},
		{model.StatusUnknown, model.StatusUp, model.StatusUp},
		{model.StatusDown, model.StatusUp, model.StatusDown},
		{model.StatusUp, model.StatusDown, model.StatusDown},
	}

	for _, tt := range tests {
		response := NewHealthUseCase(staticChecker(tt.queue), staticChecker(tt.buffer)).CheckHealth()

		assert.Equal(t, tt.want, response.Status)
		assert.Equal(t, tt.queue, response.Queue.Status)
		assert.Equal(t, tt.buffer, response.Buffer.Status)
	}
}
