package repository

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
)

const retiredColumn = "retired"

type conditionSet struct {
	conditions map[string]interface{}
}

func NewQueryBuilder() QueryBuilder {
	return &conditionSet{
		conditions: make(map[string]interface{}),
	}
}

func (q *conditionSet) AddCondition(key string, value interface{}) {
	q.conditions[key] = value
}

func (q *conditionSet) AddTextCondition(key string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.conditions[key] = value
	}
}

func (q *conditionSet) ExcludeRetired() {
	q.conditions[retiredColumn] = false
}

// BuildConditions renames keys found in aliases, e.g. to qualify a column
// with its table alias in joins.
func (q *conditionSet) BuildConditions(aliases map[string]string) goqu.Ex {
	conditions := make(goqu.Ex, len(q.conditions))
	for key, value := range q.conditions {
		if alias, ok := aliases[key]; ok {
			key = alias
		}
		conditions[key] = value
	}
	return conditions
}
