package health

import (
	"sqs-output/internal/domain/model"
)

type healthUseCase struct {
	queue  ComponentChecker
	buffer ComponentChecker
}

func NewHealthUseCase(queue ComponentChecker, buffer ComponentChecker) UseCase {
	return &healthUseCase{
		queue:  queue,
		buffer: buffer,
	}
}

// CheckHealth is DOWN when any component is DOWN. A queue not resolved yet does not make the service DOWN.
func (useCase *healthUseCase) CheckHealth() model.HealthResponse {
	queueHealth := useCase.queue.Health()
	bufferHealth := useCase.buffer.Health()

	overallStatus := model.StatusUp
	if queueHealth.Status == model.StatusDown || bufferHealth.Status == model.StatusDown {
		overallStatus = model.StatusDown
	}

	return model.HealthResponse{
		Status: overallStatus,
		Queue:  queueHealth,
		Buffer: bufferHealth,
	}
}
