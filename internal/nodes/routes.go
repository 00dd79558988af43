package nodes

import "github.com/aretw0/querent/pkg/domain"

// RouteByIntent follows classify_intent. A recorded error goes to the error
// handler; database queries retrieve schema; everything else is answered
// directly.
func RouteByIntent(s domain.State) domain.Route {
	switch {
	case s.Failed():
		return domain.To(domain.NodeHandleError)
	case s.Intent == domain.IntentDatabaseQuery:
		return domain.To(domain.NodeRetrieveSchema)
	default:
		return domain.To(domain.NodeGenerateResponse)
	}
}

// ShouldExecuteSQL follows generate_sql.
func ShouldExecuteSQL(s domain.State) domain.Route {
	switch {
	case s.Failed():
		return domain.To(domain.NodeHandleError)
	case s.SQLQuery != "":
		return domain.To(domain.NodeExecuteSQL)
	default:
		return domain.Route{Next: domain.NodeHandleError, Update: domain.Fail("Failed to produce a SQL query.")}
	}
}

// ShouldGenerateResponse follows execute_sql. An empty result set counts as
// success.
func ShouldGenerateResponse(s domain.State) domain.Route {
	switch {
	case s.Failed():
		return domain.To(domain.NodeHandleError)
	case s.Executed():
		return domain.To(domain.NodeGenerateResponse)
	default:
		return domain.Route{
			Next:   domain.NodeHandleError,
			Update: domain.Fail("Query execution did not return results or failed silently."),
		}
	}
}
