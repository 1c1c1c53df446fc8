package repository

import "github.com/doug-martin/goqu/v9"

// QueryBuilder collects the WHERE conditions of list endpoints.
type QueryBuilder interface {
	AddCondition(key string, value interface{})
	// AddTextCondition ignores blank values, so optional query params can be
	// passed through unchecked.
	AddTextCondition(key string, value string)
	// ExcludeRetired hides stock records that reached zero.
	ExcludeRetired()
	BuildConditions(aliases map[string]string) goqu.Ex
}
