package generation

import "context"

// MockClient implements Client for tests with a fixed reply or error.
type MockClient struct {
	Reply string
	Err   error

	// Requests records every call for assertions.
	Requests []Request
}

var _ Client = (*MockClient)(nil)

// Generate returns the configured reply or error and records the request.
func (m *MockClient) Generate(_ context.Context, req Request) (string, error) {
	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return "", m.Err
	}

	return m.Reply, nil
}
