package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lborres/quill/core"
)

// PostService is plain CRUD glue over the post collaborator. It holds
// no authentication logic; handlers reach it only after the route gate
// has admitted the request.
type PostService struct {
	store core.PostStorage
}

func NewPostService(store core.PostStorage) *PostService {
	return &PostService{store: store}
}

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Body        string `json:"body"`
}

var (
	ErrTitleRequired = errors.New("title is required")
	ErrBodyRequired  = errors.New("body is required")
)

func (input PostInput) validate() error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(input.Body) == "" {
		return ErrBodyRequired
	}
	return nil
}

func (s *PostService) Create(ctx context.Context, input PostInput) (*core.Post, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	post := &core.Post{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Body:        input.Body,
		CreatedAt:   time.Now(),
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("%w: creating post: %v", core.ErrStorageFailure, err)
	}
	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]*core.Post, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing posts: %v", core.ErrStorageFailure, err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*core.Post, error) {
	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrPostNotFound) {
			return nil, core.ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: fetching post: %v", core.ErrStorageFailure, err)
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, id string, input PostInput) (*core.Post, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	post.Title = strings.TrimSpace(input.Title)
	post.Description = strings.TrimSpace(input.Description)
	post.Body = input.Body
	post.UpdatedAt = &now

	if err := s.store.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, core.ErrPostNotFound) {
			return nil, core.ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: updating post: %v", core.ErrStorageFailure, err)
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		if errors.Is(err, core.ErrPostNotFound) {
			return core.ErrPostNotFound
		}
		return fmt.Errorf("%w: deleting post: %v", core.ErrStorageFailure, err)
	}
	return nil
}
