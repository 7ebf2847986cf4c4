// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"github.com/specter-re/specter/internal/core/models"
	"github.com/specter-re/specter/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockChatClient provides a mock implementation of the llm.ChatClient
// interface for testing the model-backed strategies without a server.
type MockChatClient struct {
	mock.Mock
}

// Chat mocks the Chat method
func (m *MockChatClient) Chat(messages []llm.Message) (string, error) {
	args := m.Called(messages)
	return args.String(0), args.Error(1)
}

// MockStrategy provides a mock planning strategy
type MockStrategy struct {
	mock.Mock
}

// Plan mocks the Plan method
func (m *MockStrategy) Plan(request string) (*models.ExecutionPlan, error) {
	args := m.Called(request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExecutionPlan), args.Error(1)
}
