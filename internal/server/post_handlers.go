package server

import (
	"errors"

	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PostDetail handles GET /posts/:id/
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return s.renderPostDetail(c, fiber.StatusOK, id, "", nil)
}

func (s *Server) renderPostDetail(c *fiber.Ctx, status int, id uint, commentText string, fields models.FormErrors) error {
	ctx := c.UserContext()
	post, err := s.postService.GetPost(ctx, id, currentUserID(c))
	if err != nil {
		return err
	}
	comments, err := s.commentService.ListComments(ctx, id)
	if err != nil {
		return err
	}
	return s.render(c, status, "posts/post_detail", fiber.Map{
		"Title":       post.Excerpt(30),
		"Post":        post,
		"Comments":    comments,
		"CommentText": commentText,
		"Errors":      fields,
		"IsAuthor":    currentUserID(c) == post.AuthorID,
	})
}

// PostDetailComment handles POST /posts/:id/. An invalid comment re-renders
// the detail page with the field error.
func (s *Server) PostDetailComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	text := c.FormValue("text")
	_, err = s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID: currentUserID(c),
		PostID: id,
		Text:   text,
	})
	if fields := formErrors(err); fields != nil {
		return s.renderPostDetail(c, fiber.StatusBadRequest, id, text, fields)
	}
	if err != nil {
		return err
	}
	return c.Redirect(postURL(id))
}

// AddComment handles POST /posts/:id/comment/. Invalid input is dropped and
// the visitor is sent back to the post.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	_, err = s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID: currentUserID(c),
		PostID: id,
		Text:   c.FormValue("text"),
	})
	if err != nil && formErrors(err) == nil {
		return err
	}
	return c.Redirect(postURL(id))
}

func (s *Server) redirectToPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return c.Redirect(postURL(id))
}

// LikePost handles POST /posts/:id/like/
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	liked, err := s.likeService.Toggle(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return err
	}
	if wantsJSON(c) {
		return c.JSON(fiber.Map{"post_id": id, "liked": liked})
	}
	return c.Redirect("/")
}

type postFormView struct {
	Text       string
	GroupID    uint
	Image      string
	IsEdit     bool
	PostID     uint
	ClearImage bool
}

func (s *Server) renderPostForm(c *fiber.Ctx, status int, form postFormView, fields models.FormErrors) error {
	groups, err := s.postService.ListGroups(c.UserContext())
	if err != nil {
		return err
	}
	title := "New post"
	if form.IsEdit {
		title = "Edit post"
	}
	return s.render(c, status, "posts/create_post", fiber.Map{
		"Title":  title,
		"Form":   form,
		"Groups": groups,
		"Errors": fields,
	})
}

// PostCreateForm handles GET /create/
func (s *Server) PostCreateForm(c *fiber.Ctx) error {
	return s.renderPostForm(c, fiber.StatusOK, postFormView{}, nil)
}

// PostCreate handles POST /create/
func (s *Server) PostCreate(c *fiber.Ctx) error {
	form := postFormView{Text: c.FormValue("text")}

	groupID, err := parseGroupID(c)
	if err != nil {
		return s.renderPostForm(c, fiber.StatusBadRequest, form, formErrors(err))
	}
	if groupID != nil {
		form.GroupID = *groupID
	}
	image, err := formImage(c)
	if err != nil {
		return err
	}

	_, err = s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: currentUserID(c),
		Text:     form.Text,
		GroupID:  groupID,
		Image:    image,
	})
	if fields := formErrors(err); fields != nil {
		return s.renderPostForm(c, fiber.StatusBadRequest, form, fields)
	}
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(currentUser(c).Username))
}

// PostEditForm handles GET /posts/:id/edit/. Only the author sees the form;
// everyone else is sent to the post.
func (s *Server) PostEditForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.GetPost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return err
	}
	if post.AuthorID != currentUserID(c) {
		return c.Redirect(postURL(id))
	}

	form := postFormView{Text: post.Text, Image: post.Image, IsEdit: true, PostID: post.ID}
	if post.GroupID != nil {
		form.GroupID = *post.GroupID
	}
	return s.renderPostForm(c, fiber.StatusOK, form, nil)
}

// PostEdit handles POST /posts/:id/edit/
func (s *Server) PostEdit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	form := postFormView{
		Text:       c.FormValue("text"),
		IsEdit:     true,
		PostID:     id,
		ClearImage: c.FormValue("image-clear") != "",
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return s.renderPostForm(c, fiber.StatusBadRequest, form, formErrors(err))
	}
	if groupID != nil {
		form.GroupID = *groupID
	}
	image, err := formImage(c)
	if err != nil {
		return err
	}

	_, err = s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:     currentUserID(c),
		PostID:     id,
		Text:       form.Text,
		GroupID:    groupID,
		Image:      image,
		ClearImage: form.ClearImage,
	})
	switch {
	case errors.Is(err, service.ErrNotAuthor):
		return c.Redirect(postURL(id))
	case formErrors(err) != nil:
		return s.renderPostForm(c, fiber.StatusBadRequest, form, formErrors(err))
	case err != nil:
		return err
	}
	return c.Redirect(postURL(id))
}
