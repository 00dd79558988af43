package testutils

import (
	"context"

	"github.com/aretw0/querent/pkg/domain"
	"github.com/aretw0/querent/pkg/ports"
	"github.com/stretchr/testify/mock"
)

// MockGenerator is a testify mock of ports.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockEmbedder is a testify mock of ports.Embedder.
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	v, _ := args.Get(0).([]float32)
	return v, args.Error(1)
}

// MockSearcher is a testify mock of ports.VectorSearcher.
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, index ports.IndexRef, vector []float32, k int) ([]ports.Neighbor, error) {
	args := m.Called(ctx, index, vector, k)
	v, _ := args.Get(0).([]ports.Neighbor)
	return v, args.Error(1)
}

// MockQueryEngine is a testify mock of ports.QueryEngine.
type MockQueryEngine struct {
	mock.Mock
}

func (m *MockQueryEngine) Run(ctx context.Context, sql string) ([]domain.Row, error) {
	args := m.Called(ctx, sql)
	v, _ := args.Get(0).([]domain.Row)
	return v, args.Error(1)
}

// MockSanitizer is a testify mock of ports.Sanitizer.
type MockSanitizer struct {
	mock.Mock
}

func (m *MockSanitizer) SanitizePrompt(ctx context.Context, text string) (ports.SanitizeResult, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(ports.SanitizeResult), args.Error(1)
}

func (m *MockSanitizer) SanitizeResponse(ctx context.Context, text string) (ports.SanitizeResult, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(ports.SanitizeResult), args.Error(1)
}

var (
	_ ports.Generator      = (*MockGenerator)(nil)
	_ ports.Embedder       = (*MockEmbedder)(nil)
	_ ports.VectorSearcher = (*MockSearcher)(nil)
	_ ports.QueryEngine    = (*MockQueryEngine)(nil)
	_ ports.Sanitizer      = (*MockSanitizer)(nil)
)
