package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/quill/services"
)

func (a *Adapter) listPosts(c fiber.Ctx) error {
	posts, err := a.posts.List(c.Context())
	if err != nil {
		return a.handleError(c, err)
	}
	return c.JSON(posts)
}

func (a *Adapter) getPost(c fiber.Ctx) error {
	post, err := a.posts.Get(c.Context(), c.Params("id"))
	if err != nil {
		return a.handleError(c, err)
	}
	return c.JSON(post)
}

func (a *Adapter) createPost(c fiber.Ctx) error {
	var input services.PostInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	post, err := a.posts.Create(c.Context(), input)
	if err != nil {
		return a.handleError(c, err)
	}

	if principal := principalFrom(c); principal != nil {
		a.log.Info(c.Context(), "post created", "post", post.ID, "account", principal.ID)
	}
	return c.Status(http.StatusCreated).JSON(post)
}

func (a *Adapter) updatePost(c fiber.Ctx) error {
	var input services.PostInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	post, err := a.posts.Update(c.Context(), c.Params("id"), input)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.JSON(post)
}

func (a *Adapter) deletePost(c fiber.Ctx) error {
	if err := a.posts.Delete(c.Context(), c.Params("id")); err != nil {
		return a.handleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "post deleted"})
}
