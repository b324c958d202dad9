package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/intend-project/inserv-orch/internal/infra6/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGraph struct {
	result map[string]interface{}
	err    error
}

func (f *fakeGraph) QueryIntents(ctx context.Context, sparql string) (map[string]interface{}, error) {
	return f.result, f.err
}

func TestResolveHandlerURL_Found(t *testing.T) {
	graph := &fakeGraph{result: map[string]interface{}{
		"results": map[string]interface{}{
			"bindings": []interface{}{
				map[string]interface{}{
					"handlerUrl": map[string]interface{}{"value": "http://ec21-handler.example.com"},
				},
			},
		},
	}}
	repo := NewRepository(graph)

	url, err := repo.ResolveHandlerURL(context.Background(), "EC21")
	require.NoError(t, err)
	assert.Equal(t, "http://ec21-handler.example.com", url)
}

func TestResolveHandlerURL_NotFound(t *testing.T) {
	graph := &fakeGraph{result: map[string]interface{}{
		"results": map[string]interface{}{"bindings": []interface{}{}},
	}}
	repo := NewRepository(graph)

	_, err := repo.ResolveHandlerURL(context.Background(), "EC99")
	assert.ErrorIs(t, err, domain.ErrDataCenterNotFound)
}

func TestResolveHandlerURL_GraphUnavailable(t *testing.T) {
	graph := &fakeGraph{err: errors.New("connection refused")}
	repo := NewRepository(graph)

	_, err := repo.ResolveHandlerURL(context.Background(), "EC21")
	assert.ErrorIs(t, err, domain.ErrGraphUnavailable)
}
