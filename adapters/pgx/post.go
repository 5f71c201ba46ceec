package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/quill/core"
)

func (a *Adapter) CreatePost(ctx context.Context, post *core.Post) error {
	query := `INSERT INTO public.posts (title, description, body)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`

	return a.pool.QueryRow(ctx, query,
		post.Title, post.Description, post.Body,
	).Scan(&post.ID, &post.CreatedAt)
}

func (a *Adapter) GetPostByID(ctx context.Context, id string) (*core.Post, error) {
	query := `SELECT id, title, description, body, created_at, updated_at
	          FROM public.posts WHERE id = $1`

	post := &core.Post{}
	err := a.pool.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Description, &post.Body, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (a *Adapter) ListPosts(ctx context.Context) ([]*core.Post, error) {
	query := `SELECT id, title, description, body, created_at, updated_at
	          FROM public.posts ORDER BY created_at DESC`

	rows, err := a.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*core.Post
	for rows.Next() {
		post := &core.Post{}
		err := rows.Scan(
			&post.ID, &post.Title, &post.Description, &post.Body, &post.CreatedAt, &post.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (a *Adapter) UpdatePost(ctx context.Context, post *core.Post) error {
	query := `UPDATE public.posts SET title = $1, description = $2, body = $3, updated_at = now()
	          WHERE id = $4 RETURNING updated_at`

	err := a.pool.QueryRow(ctx, query,
		post.Title, post.Description, post.Body, post.ID,
	).Scan(&post.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return core.ErrPostNotFound
		}
		return err
	}
	return nil
}

func (a *Adapter) DeletePost(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrPostNotFound
	}
	return nil
}
