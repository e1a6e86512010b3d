package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bloghive/internal/models"
)

type BlogRepository interface {
	Create(ctx context.Context, post *models.BlogPost) error
	GetByID(ctx context.Context, id int) (*models.BlogPost, error)
	Update(ctx context.Context, post *models.BlogPost) error
	Delete(ctx context.Context, id int) (int64, error)
	List(ctx context.Context, f models.BlogFilter) ([]*models.BlogPost, error)
	Count(ctx context.Context, f models.BlogFilter) (int, error)

	Stats(ctx context.Context, id int) (*models.BlogStats, error)
	ToggleLike(ctx context.Context, blogID, userID int) (bool, error)
	IsLiked(ctx context.Context, blogID, userID int) (bool, error)
	AddComment(ctx context.Context, c *models.Comment) error
	ListComments(ctx context.Context, blogID int) ([]*models.Comment, error)
	AddView(ctx context.Context, blogID int, ip, userAgent string) error
}

type blogRepository struct {
	DB *sql.DB
}

func NewBlogRepository(db *sql.DB) BlogRepository {
	return &blogRepository{DB: db}
}

const postColumns = `id, title, description, category, author_id, author_name, status, created_at, updated_at`

func scanPost(row rowScanner) (*models.BlogPost, error) {
	p := &models.BlogPost{}
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.AuthorID, &p.AuthorName, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *blogRepository) Create(ctx context.Context, p *models.BlogPost) error {
	if p.Status == "" {
		p.Status = models.PostStatusPublished
	}
	const q = `
		INSERT INTO blog_posts (title, description, category, author_id, author_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q, p.Title, p.Description, p.Category, p.AuthorID, p.AuthorName, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("blog create: %w", err)
	}
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id int) (*models.BlogPost, error) {
	q := `SELECT ` + postColumns + ` FROM blog_posts WHERE id = $1`
	p, err := scanPost(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("blog get: %w", err)
	}
	return p, nil
}

func (r *blogRepository) Update(ctx context.Context, p *models.BlogPost) error {
	const q = `
		UPDATE blog_posts
		SET title = $1, description = $2, category = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING updated_at
	`
	if err := r.DB.QueryRowContext(ctx, q, p.Title, p.Description, p.Category, p.ID).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("blog update: %w", err)
	}
	return nil
}

// Delete удаляет пост вместе с лайками, комментариями и просмотрами в одной транзакции.
func (r *blogRepository) Delete(ctx context.Context, id int) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("blog delete begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM likes WHERE blog_id = $1`,
		`DELETE FROM comments WHERE blog_id = $1`,
		`DELETE FROM views WHERE blog_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return 0, fmt.Errorf("blog delete dependents: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("blog delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("blog delete rows: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("blog delete commit: %w", err)
	}
	return n, nil
}

// фильтры всегда добавляются в одном порядке: status, category, author
func blogWhere(f models.BlogFilter) (string, []any) {
	conds := []string{"status = $1"}
	args := []any{models.PostStatusPublished}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.AuthorID > 0 {
		args = append(args, f.AuthorID)
		conds = append(conds, fmt.Sprintf("author_id = $%d", len(args)))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *blogRepository) List(ctx context.Context, f models.BlogFilter) ([]*models.BlogPost, error) {
	where, args := blogWhere(f)
	args = append(args, f.Limit, f.Offset)
	q := `SELECT ` + postColumns + ` FROM blog_posts` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("blog list: %w", err)
	}
	defer rows.Close()

	var out []*models.BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("blog scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *blogRepository) Count(ctx context.Context, f models.BlogFilter) (int, error) {
	where, args := blogWhere(f)
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("blog count: %w", err)
	}
	return n, nil
}

func (r *blogRepository) Stats(ctx context.Context, id int) (*models.BlogStats, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM likes WHERE blog_id = $1),
			(SELECT COUNT(*) FROM comments WHERE blog_id = $1),
			(SELECT COUNT(*) FROM views WHERE blog_id = $1)
	`
	var s models.BlogStats
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(&s.Likes, &s.Comments, &s.Views); err != nil {
		return nil, fmt.Errorf("blog stats: %w", err)
	}
	return &s, nil
}

// ToggleLike снимает лайк, если он был, иначе ставит. Возвращает новое состояние.
func (r *blogRepository) ToggleLike(ctx context.Context, blogID, userID int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM likes WHERE blog_id = $1 AND user_id = $2`, blogID, userID)
	if err != nil {
		return false, fmt.Errorf("like delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, nil
	}
	const q = `
		INSERT INTO likes (blog_id, user_id) VALUES ($1, $2)
		ON CONFLICT (blog_id, user_id) DO NOTHING
	`
	if _, err := r.DB.ExecContext(ctx, q, blogID, userID); err != nil {
		return false, fmt.Errorf("like insert: %w", err)
	}
	return true, nil
}

func (r *blogRepository) IsLiked(ctx context.Context, blogID, userID int) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM likes WHERE blog_id = $1 AND user_id = $2)`
	var liked bool
	if err := r.DB.QueryRowContext(ctx, q, blogID, userID).Scan(&liked); err != nil {
		return false, fmt.Errorf("like status: %w", err)
	}
	return liked, nil
}

func (r *blogRepository) AddComment(ctx context.Context, c *models.Comment) error {
	const q = `
		INSERT INTO comments (blog_id, user_id, comment_text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRowContext(ctx, q, c.BlogID, c.UserID, c.CommentText).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("comment create: %w", err)
	}
	return nil
}

func (r *blogRepository) ListComments(ctx context.Context, blogID int) ([]*models.Comment, error) {
	const q = `
		SELECT c.id, c.blog_id, c.user_id, COALESCE(u.name, ''), c.comment_text, c.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.blog_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`
	rows, err := r.DB.QueryContext(ctx, q, blogID)
	if err != nil {
		return nil, fmt.Errorf("comment list: %w", err)
	}
	defer rows.Close()

	var out []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.BlogID, &c.UserID, &c.AuthorName, &c.CommentText, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("comment scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *blogRepository) AddView(ctx context.Context, blogID int, ip, userAgent string) error {
	const q = `INSERT INTO views (blog_id, user_ip, user_agent) VALUES ($1, $2, $3)`
	if _, err := r.DB.ExecContext(ctx, q, blogID, ip, userAgent); err != nil {
		return fmt.Errorf("view create: %w", err)
	}
	return nil
}
