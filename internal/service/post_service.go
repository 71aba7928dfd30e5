package service

import (
	"context"
	"errors"

	"yatube/internal/featureflags"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

type PostService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	images    *ImageService
	flags     *featureflags.Manager
	// onWrite runs after every successful create or edit.
	onWrite func(ctx context.Context)
}

type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	Image    *UploadImageInput
}

type UpdatePostInput struct {
	UserID     uint
	PostID     uint
	Text       string
	GroupID    *uint
	Image      *UploadImageInput
	ClearImage bool
}

// ErrNotAuthor is returned when someone other than the author edits a post.
var ErrNotAuthor = models.NewForbiddenError("Only the author can edit this post")

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	images *ImageService,
	flags *featureflags.Manager,
	onWrite func(ctx context.Context),
) *PostService {
	if onWrite == nil {
		onWrite = func(context.Context) {}
	}
	return &PostService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		images:    images,
		flags:     flags,
		onWrite:   onWrite,
	}
}

func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, viewerID)
}

// ListGroups returns the choices offered by the post form.
func (s *PostService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.groupRepo.List(ctx)
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	fields := models.FormErrors{}
	text, groupID := s.validateContent(ctx, fields, in.Text, in.GroupID)
	image := s.storeImage(fields, in.AuthorID, in.Image)
	if err := fields.Err(); err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     text,
		AuthorID: in.AuthorID,
		GroupID:  groupID,
		Image:    image,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.PostsWritten.WithLabelValues("create").Inc()
	s.onWrite(ctx)
	return post, nil
}

// UpdatePost edits text, group and image. The author never changes; a caller
// other than the author gets ErrNotAuthor and nothing is written.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if in.UserID == 0 || post.AuthorID != in.UserID {
		return nil, ErrNotAuthor
	}

	fields := models.FormErrors{}
	text, groupID := s.validateContent(ctx, fields, in.Text, in.GroupID)
	image := s.storeImage(fields, in.UserID, in.Image)
	if err := fields.Err(); err != nil {
		return nil, err
	}

	post.Text = text
	post.GroupID = groupID
	switch {
	case image != "":
		post.Image = image
	case in.ClearImage:
		post.Image = ""
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	observability.PostsWritten.WithLabelValues("update").Inc()
	s.onWrite(ctx)
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) validateContent(ctx context.Context, fields models.FormErrors, rawText string, groupID *uint) (string, *uint) {
	text, err := validation.ValidateText(rawText, validation.MaxPostTextLength)
	if err != nil {
		fields.Add("text", err.Error())
	}
	if groupID == nil || *groupID == 0 {
		return text, nil
	}
	if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
		if models.IsNotFound(err) {
			fields.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			fields.Add("group", "Could not load groups, try again.")
		}
	}
	return text, groupID
}

func (s *PostService) storeImage(fields models.FormErrors, userID uint, in *UploadImageInput) string {
	if in == nil || s.images == nil || !s.flags.Enabled(featureflags.PostImages, userID) {
		return ""
	}
	in.UserID = userID
	path, err := s.images.Store(*in)
	if err != nil {
		var msg string
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Fields != nil {
			msg = appErr.Fields["image"]
		}
		if msg == "" {
			msg = "The image could not be saved."
		}
		fields.Add("image", msg)
		return ""
	}
	return path
}
