package server

import (
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Home handles GET /: the post listing, most recent first.
func (s *Server) Home(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.Context())
	if err != nil {
		return err
	}
	return s.render(c, "index", fiber.Map{
		"Posts": posts,
	})
}

// ShowPost handles GET /post:id.
func (s *Server) ShowPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return s.renderNotFound(c, "That post does not exist.")
		}
		return err
	}

	user := s.currentUser(c)
	canEdit := user != nil && user.ID == post.UserID

	return s.render(c, "post", fiber.Map{
		"Title":   post.Title,
		"Post":    post,
		"CanEdit": canEdit,
	})
}

// AddComment handles POST /post:id.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var authorID uint
	if user := s.currentUser(c); user != nil {
		authorID = user.ID
	}

	_, err = s.commentService.AddComment(c.Context(), service.AddCommentInput{
		AuthorID: authorID,
		PostID:   id,
		Text:     c.FormValue("comment"),
	})
	if err != nil {
		switch models.CodeOf(err) {
		case models.CodeUnauthenticated:
			return s.redirectWithFlash(c, "/login", "You need to login or register to comment.")
		case models.CodeNotFound:
			return s.renderNotFound(c, "That post does not exist.")
		case models.CodeValidation:
			return s.redirectWithFlash(c, c.Path(), err.Error())
		default:
			return err
		}
	}

	return c.Redirect(c.Path(), fiber.StatusSeeOther)
}

// ShowCreatePost handles GET /create-post.
func (s *Server) ShowCreatePost(c *fiber.Ctx) error {
	return s.render(c, "create-post", fiber.Map{
		"Title":        "New Post",
		"FormAction":   "/create-post",
		"FormTitle":    "",
		"FormSubtitle": "",
		"FormBody":     "",
		"FormImageURL": "",
	})
}

// CreatePost handles POST /create-post.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	user := s.currentUser(c)

	_, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID: user.ID,
		Title:    c.FormValue("title"),
		Subtitle: c.FormValue("subtitle"),
		Body:     c.FormValue("body"),
		ImageURL: c.FormValue("img_url"),
	})
	if err != nil {
		switch models.CodeOf(err) {
		case models.CodeDuplicateTitle, models.CodeValidation:
			// Re-render the form with the visitor's input preserved.
			return s.render(c, "create-post", fiber.Map{
				"Title":        "New Post",
				"FormAction":   "/create-post",
				"Flash":        err.Error(),
				"FormTitle":    c.FormValue("title"),
				"FormSubtitle": c.FormValue("subtitle"),
				"FormBody":     c.FormValue("body"),
				"FormImageURL": c.FormValue("img_url"),
			})
		default:
			return err
		}
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// ShowEditPost handles GET /edit-post:id: the authoring form pre-filled with
// the post being edited.
func (s *Server) ShowEditPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return s.renderNotFound(c, "That post does not exist.")
		}
		return err
	}

	user := s.currentUser(c)
	if post.UserID != user.ID {
		return s.redirectWithFlash(c, "/post"+c.Params("id"), "You can only edit your own posts.")
	}

	return s.render(c, "create-post", fiber.Map{
		"Title":        "Edit Post",
		"Editing":      true,
		"FormAction":   "/edit-post" + c.Params("id"),
		"FormTitle":    post.Title,
		"FormSubtitle": post.Subtitle,
		"FormBody":     post.Body,
		"FormImageURL": post.ImageURL,
	})
}

// UpdatePost handles POST /edit-post:id.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user := s.currentUser(c)

	_, err = s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		AuthorID: user.ID,
		PostID:   id,
		Title:    c.FormValue("title"),
		Subtitle: c.FormValue("subtitle"),
		Body:     c.FormValue("body"),
		ImageURL: c.FormValue("img_url"),
	})
	if err != nil {
		switch models.CodeOf(err) {
		case models.CodeNotFound:
			return s.renderNotFound(c, "That post does not exist.")
		case models.CodeUnauthenticated:
			return s.redirectWithFlash(c, "/post"+c.Params("id"), "You can only edit your own posts.")
		case models.CodeDuplicateTitle, models.CodeValidation:
			return s.render(c, "create-post", fiber.Map{
				"Title":        "Edit Post",
				"Editing":      true,
				"FormAction":   "/edit-post" + c.Params("id"),
				"Flash":        err.Error(),
				"FormTitle":    c.FormValue("title"),
				"FormSubtitle": c.FormValue("subtitle"),
				"FormBody":     c.FormValue("body"),
				"FormImageURL": c.FormValue("img_url"),
			})
		default:
			return err
		}
	}

	return c.Redirect("/post"+c.Params("id"), fiber.StatusSeeOther)
}
