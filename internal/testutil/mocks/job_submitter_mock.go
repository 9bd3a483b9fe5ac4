package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/worker"
)

// MockJobSubmitter stands in for worker.Pool.TrySubmit. Calls are matched by job name.
type MockJobSubmitter struct {
	mock.Mock
}

func (m *MockJobSubmitter) Submit(job worker.Job) error {
	args := m.Called(job.Name())
	return args.Error(0)
}
