package capture

import (
	"context"

	"github.com/voxlate/voxlate/domain/repositories"
)

// MockCapture returns a scripted sample or error, for tests and keyless
// development.
type MockCapture struct {
	Sample repositories.AudioSample
	Err    error
}

var _ repositories.AudioCapture = (*MockCapture)(nil)

// Capture returns the scripted outcome.
func (m *MockCapture) Capture(ctx context.Context, config repositories.CaptureConfig) (repositories.AudioSample, error) {
	if m.Err != nil {
		return repositories.AudioSample{}, m.Err
	}
	return m.Sample, nil
}
