package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// QueryBuilder собирает WHERE с параметрами $N.
type QueryBuilder struct {
	conditions []string
	args       []interface{}
	argCount   int
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		conditions: []string{},
		args:       []interface{}{},
		argCount:   1,
	}
}

func (qb *QueryBuilder) AddCondition(column string, value interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s = $%d", column, qb.argCount))
	qb.args = append(qb.args, value)
	qb.argCount++
}

// AddAny добавляет условие column = ANY($N) по списку строк.
func (qb *QueryBuilder) AddAny(column string, values []string) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s = ANY($%d)", column, qb.argCount))
	qb.args = append(qb.args, pq.Array(values))
	qb.argCount++
}

// AddSearch добавляет регистронезависимый поиск подстроки по нескольким колонкам.
func (qb *QueryBuilder) AddSearch(search string, columns ...string) {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return
	}
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		parts = append(parts, fmt.Sprintf("%s ILIKE $%d", column, qb.argCount))
	}
	qb.conditions = append(qb.conditions, "("+strings.Join(parts, " OR ")+")")
	qb.args = append(qb.args, "%"+escapeLike(search)+"%")
	qb.argCount++
}

func (qb *QueryBuilder) WhereClause() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

func (qb *QueryBuilder) Args() []interface{} {
	return qb.args
}

func (qb *QueryBuilder) NextArgNum() int {
	return qb.argCount
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
