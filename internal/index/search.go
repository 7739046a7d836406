package index

import (
	"context"
	"fmt"
	"iter"
	"strings"
)

const searchSQL = `
SELECT e.path, e.start_ms, e.end_ms, e.content
FROM subtitle_fts f
JOIN subtitle_events e ON e.id = f.rowid
WHERE subtitle_fts MATCH ?
ORDER BY bm25(subtitle_fts)`

// Search returns the events whose content matches query, ordered by the
// engine's relevance score. The sequence is lazy and restartable: each range
// re-executes the query. An empty query yields no results.
func (ix *Index) Search(ctx context.Context, query string) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		match := buildMatchExpression(query)
		if match == "" {
			return
		}

		rows, err := ix.db.QueryContext(ctx, searchSQL, match)
		if err != nil {
			yield(Result{}, fmt.Errorf("search %q: %w", query, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var res Result
			if err := rows.Scan(&res.Path, &res.Start, &res.End, &res.Content); err != nil {
				yield(Result{}, fmt.Errorf("scan result: %w", err))
				return
			}
			res.Path = ix.resolvePath(res.Path)
			if !yield(res, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Result{}, fmt.Errorf("search %q: %w", query, err))
		}
	}
}

// buildMatchExpression turns free text into an FTS5 MATCH expression with
// implicitly OR'd terms. Queries that already use explicit operators or
// quoting pass through untouched.
func buildMatchExpression(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	if hasExplicitOperators(query) {
		return query
	}

	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " OR ")
}

func hasExplicitOperators(query string) bool {
	if strings.ContainsAny(query, `"()*^`) {
		return true
	}
	for _, token := range strings.Fields(query) {
		switch token {
		case "AND", "OR", "NOT", "NEAR":
			return true
		}
	}
	return false
}
