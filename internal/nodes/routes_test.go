package nodes_test

import (
	"testing"

	"github.com/aretw0/querent/internal/nodes"
	"github.com/aretw0/querent/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteByIntent(t *testing.T) {
	base := domain.NewState("q")

	assert.Equal(t, domain.NodeRetrieveSchema, nodes.RouteByIntent(base.Apply(domain.Update{Intent: domain.Ptr(domain.IntentDatabaseQuery)})).Next)
	assert.Equal(t, domain.NodeGenerateResponse, nodes.RouteByIntent(base.Apply(domain.Update{Intent: domain.Ptr(domain.IntentGeneralQuestion)})).Next)
	assert.Equal(t, domain.NodeGenerateResponse, nodes.RouteByIntent(base.Apply(domain.Update{Intent: domain.Ptr(domain.Intent("OTHER"))})).Next)
	assert.Equal(t, domain.NodeHandleError, nodes.RouteByIntent(base.Apply(domain.Fail("x"))).Next)
}

func TestShouldExecuteSQL(t *testing.T) {
	base := domain.NewState("q")

	r := nodes.ShouldExecuteSQL(base.Apply(domain.Update{SQLQuery: domain.Ptr("SELECT 1")}))
	assert.Equal(t, domain.NodeExecuteSQL, r.Next)
	assert.True(t, r.Update.IsEmpty())

	r = nodes.ShouldExecuteSQL(base.Apply(domain.Fail("x")))
	assert.Equal(t, domain.NodeHandleError, r.Next)
	assert.True(t, r.Update.IsEmpty())

	in := base
	r = nodes.ShouldExecuteSQL(in)
	assert.Equal(t, domain.NodeHandleError, r.Next)
	require.NotNil(t, r.Update.ErrorMessage)
	assert.Equal(t, "Failed to produce a SQL query.", *r.Update.ErrorMessage)
	assert.Empty(t, in.ErrorMessage, "route must not mutate its input")
}

func TestShouldGenerateResponse(t *testing.T) {
	base := domain.NewState("q")

	r := nodes.ShouldGenerateResponse(base.Apply(domain.Update{QueryResults: domain.Ptr([]domain.Row{})}))
	assert.Equal(t, domain.NodeGenerateResponse, r.Next)

	r = nodes.ShouldGenerateResponse(base)
	assert.Equal(t, domain.NodeHandleError, r.Next)
	require.NotNil(t, r.Update.ErrorMessage)
	assert.Equal(t, "Query execution did not return results or failed silently.", *r.Update.ErrorMessage)

	r = nodes.ShouldGenerateResponse(base.Apply(domain.Fail("x")))
	assert.Equal(t, domain.NodeHandleError, r.Next)
}
