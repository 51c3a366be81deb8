package database

import "context"

func (q *Queries) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, name, color, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (q *Queries) GetTag(ctx context.Context, id int64) (Tag, error) {
	var t Tag
	err := q.db.QueryRow(ctx,
		`SELECT id, name, color, slug FROM tags WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Color, &t.Slug)
	return t, err
}

// ListTagIDs returns the subset of ids that exist in the tags table.
func (q *Queries) ListTagIDs(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id FROM tags WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

type CreateTagParams struct {
	Name  string
	Color string
	Slug  string
}

func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx,
		`INSERT INTO tags (name, color, slug) VALUES ($1, $2, $3) RETURNING id`,
		arg.Name, arg.Color, arg.Slug,
	).Scan(&id)
	return id, err
}
