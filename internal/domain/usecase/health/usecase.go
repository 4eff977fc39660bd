package health

import "sqs-output/internal/domain/model"

type UseCase interface {
	CheckHealth() model.HealthResponse
}

// ComponentChecker reports the health of a single component
type ComponentChecker interface {
	Health() model.ComponentHealthStatus
}
