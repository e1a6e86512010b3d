package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"bloghive/internal/authz"
	"bloghive/internal/models"
	"bloghive/internal/repositories"
	"bloghive/internal/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Actor is the authenticated caller.
type Actor struct {
	UserID  int
	IsAdmin bool
}

type BlogInput struct {
	Title       string
	Description string
	Category    string
}

type BlogService interface {
	List(ctx context.Context, page, limit int, category string, authorID int) ([]*models.BlogPost, models.Pagination, error)
	Get(ctx context.Context, id int) (*models.BlogPost, error)
	Create(ctx context.Context, actor Actor, in BlogInput) (*models.BlogPost, error)
	Update(ctx context.Context, actor Actor, id int, in BlogInput) (*models.BlogPost, error)
	Delete(ctx context.Context, actor Actor, id int) error

	Stats(ctx context.Context, id int) (*models.BlogStats, error)
	Comments(ctx context.Context, id int) ([]*models.Comment, error)
	AddComment(ctx context.Context, actor Actor, id int, text string) (*models.Comment, error)
	ToggleLike(ctx context.Context, actor Actor, id int) (bool, *models.BlogStats, error)
	LikeStatus(ctx context.Context, id, userID int) (bool, error)
	RecordView(ctx context.Context, id int, ip, userAgent string) error
}

type blogService struct {
	repo  repositories.BlogRepository
	users repositories.UserRepository
}

func NewBlogService(repo repositories.BlogRepository, users repositories.UserRepository) BlogService {
	return &blogService{repo: repo, users: users}
}

var errPostNotFound = NotFound("Blog post not found")

// Paginate normalises page/limit and builds the pagination block.
func Paginate(page, limit, total int) (offset int, p models.Pagination) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (total + limit - 1) / limit
	return (page - 1) * limit, models.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalPosts:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func (s *blogService) List(ctx context.Context, page, limit int, category string, authorID int) ([]*models.BlogPost, models.Pagination, error) {
	f := models.BlogFilter{Category: strings.TrimSpace(category), AuthorID: authorID}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, Infra("count posts", err)
	}
	offset, p := Paginate(page, limit, total)
	f.Limit, f.Offset = pageLimit(limit), offset

	posts, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, Infra("list posts", err)
	}
	for _, post := range posts {
		st, err := s.repo.Stats(ctx, post.ID)
		if err != nil {
			return nil, models.Pagination{}, Infra("post stats", err)
		}
		post.Stats = st
	}
	if posts == nil {
		posts = []*models.BlogPost{}
	}
	return posts, p, nil
}

func (s *blogService) load(ctx context.Context, id int) (*models.BlogPost, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, Infra("load post", err)
	}
	if post == nil {
		return nil, errPostNotFound
	}
	return post, nil
}

func (s *blogService) Get(ctx context.Context, id int) (*models.BlogPost, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := s.repo.Stats(ctx, id)
	if err != nil {
		return nil, Infra("post stats", err)
	}
	post.Stats = st
	return post, nil
}

func validateBlogInput(in *BlogInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Title == "" || in.Description == "" || in.Category == "" {
		return Validation("Title, description and category are required")
	}
	return nil
}

func (s *blogService) Create(ctx context.Context, actor Actor, in BlogInput) (*models.BlogPost, error) {
	if err := validateBlogInput(&in); err != nil {
		return nil, err
	}
	author, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, Infra("lookup author", err)
	}
	if author == nil {
		return nil, NotFound("User not found")
	}
	post := &models.BlogPost{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		Status:      models.PostStatusPublished,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, Infra("create post", err)
	}
	post.Stats = &models.BlogStats{}
	utils.Logger.WithFields(logrus.Fields{"post_id": post.ID, "author_id": author.ID}).Info("[blog][create] post created")
	return post, nil
}

func canEdit(actor Actor, post *models.BlogPost) bool {
	return authz.CanEditPost(actor.UserID, post.AuthorID, actor.IsAdmin)
}

func (s *blogService) Update(ctx context.Context, actor Actor, id int, in BlogInput) (*models.BlogPost, error) {
	if err := validateBlogInput(&in); err != nil {
		return nil, err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(actor, post) {
		return nil, ErrForbidden
	}
	post.Title, post.Description, post.Category = in.Title, in.Description, in.Category
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, Infra("update post", err)
	}
	return post, nil
}

func (s *blogService) Delete(ctx context.Context, actor Actor, id int) error {
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canEdit(actor, post) {
		return ErrForbidden
	}
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return Infra("delete post", err)
	}
	if n == 0 {
		return errPostNotFound
	}
	utils.Logger.WithFields(logrus.Fields{"post_id": id, "by": actor.UserID}).Info("[blog][delete] post deleted")
	return nil
}

func (s *blogService) Stats(ctx context.Context, id int) (*models.BlogStats, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	st, err := s.repo.Stats(ctx, id)
	if err != nil {
		return nil, Infra("post stats", err)
	}
	return st, nil
}

func (s *blogService) Comments(ctx context.Context, id int) ([]*models.Comment, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.repo.ListComments(ctx, id)
	if err != nil {
		return nil, Infra("list comments", err)
	}
	if list == nil {
		list = []*models.Comment{}
	}
	return list, nil
}

func (s *blogService) AddComment(ctx context.Context, actor Actor, id int, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Validation("Comment text is required")
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	c := &models.Comment{BlogID: id, UserID: actor.UserID, CommentText: text}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, Infra("add comment", err)
	}
	if u, err := s.users.GetByID(ctx, actor.UserID); err == nil && u != nil {
		c.AuthorName = u.Name
	}
	return c, nil
}

func (s *blogService) ToggleLike(ctx context.Context, actor Actor, id int) (bool, *models.BlogStats, error) {
	if _, err := s.load(ctx, id); err != nil {
		return false, nil, err
	}
	liked, err := s.repo.ToggleLike(ctx, id, actor.UserID)
	if err != nil {
		return false, nil, Infra("toggle like", err)
	}
	st, err := s.repo.Stats(ctx, id)
	if err != nil {
		return false, nil, Infra("post stats", err)
	}
	return liked, st, nil
}

func (s *blogService) LikeStatus(ctx context.Context, id, userID int) (bool, error) {
	if userID <= 0 {
		return false, Validation("userId is required")
	}
	liked, err := s.repo.IsLiked(ctx, id, userID)
	if err != nil {
		return false, Infra("like status", err)
	}
	return liked, nil
}

func (s *blogService) RecordView(ctx context.Context, id int, ip, userAgent string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.AddView(ctx, id, ip, userAgent); err != nil {
		return Infra("record view", err)
	}
	return nil
}
