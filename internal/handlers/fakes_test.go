package handlers_test

import (
	"context"
	"io"

	"bloghive/internal/models"
	"bloghive/internal/services"
)

type fakeUsers struct {
	login   func(email, password string) (*models.User, *services.TokenPair, error)
	refresh func(token string) (*models.User, *services.TokenPair, error)
	del     func(email, password string, userID int) error
	banned  map[int]bool
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*models.User, *services.TokenPair, error) {
	return f.login(email, password)
}

func (f *fakeUsers) Refresh(_ context.Context, token string) (*models.User, *services.TokenPair, error) {
	return f.refresh(token)
}

func (f *fakeUsers) DeleteAccount(_ context.Context, email, password string, userID int) error {
	return f.del(email, password, userID)
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	return &models.User{ID: id, Banned: f.banned[id]}, nil
}

type fakeVerification struct {
	sendSignup   func(email, fullName, password string) error
	verifySignup func(email, code string) (*models.User, error)
	sendReset    func(email string) error
	verifyReset  func(email, code string) error
	reset        func(email, code, newPassword string) error
}

func (f *fakeVerification) SendSignupOTP(_ context.Context, email, fullName, password string) error {
	return f.sendSignup(email, fullName, password)
}

func (f *fakeVerification) VerifySignupOTP(_ context.Context, email, code string) (*models.User, error) {
	return f.verifySignup(email, code)
}

func (f *fakeVerification) SendResetOTP(_ context.Context, email string) error {
	return f.sendReset(email)
}

func (f *fakeVerification) VerifyResetOTP(_ context.Context, email, code string) error {
	return f.verifyReset(email, code)
}

func (f *fakeVerification) ResetPassword(_ context.Context, email, code, newPassword string) error {
	return f.reset(email, code, newPassword)
}

// fakeBlogs keeps posts in a map; actor checks mirror the real service.
type fakeBlogs struct {
	posts    map[int]*models.BlogPost
	lastList struct {
		page, limit, authorID int
		category              string
	}
	deletedBy services.Actor
}

func newFakeBlogs(posts ...*models.BlogPost) *fakeBlogs {
	f := &fakeBlogs{posts: map[int]*models.BlogPost{}}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakeBlogs) get(id int) (*models.BlogPost, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, services.NotFound("Blog post not found")
	}
	return p, nil
}

func (f *fakeBlogs) List(_ context.Context, page, limit int, category string, authorID int) ([]*models.BlogPost, models.Pagination, error) {
	f.lastList.page, f.lastList.limit, f.lastList.category, f.lastList.authorID = page, limit, category, authorID
	out := []*models.BlogPost{}
	for _, p := range f.posts {
		out = append(out, p)
	}
	_, pg := services.Paginate(page, limit, len(out))
	return out, pg, nil
}

func (f *fakeBlogs) Get(_ context.Context, id int) (*models.BlogPost, error) { return f.get(id) }

func (f *fakeBlogs) Create(_ context.Context, actor services.Actor, in services.BlogInput) (*models.BlogPost, error) {
	p := &models.BlogPost{ID: len(f.posts) + 1, Title: in.Title, Description: in.Description, Category: in.Category, AuthorID: actor.UserID}
	f.posts[p.ID] = p
	return p, nil
}

func (f *fakeBlogs) Update(_ context.Context, actor services.Actor, id int, in services.BlogInput) (*models.BlogPost, error) {
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != actor.UserID && !actor.IsAdmin {
		return nil, services.ErrForbidden
	}
	p.Title = in.Title
	return p, nil
}

func (f *fakeBlogs) Delete(_ context.Context, actor services.Actor, id int) error {
	p, err := f.get(id)
	if err != nil {
		return err
	}
	if p.AuthorID != actor.UserID && !actor.IsAdmin {
		return services.ErrForbidden
	}
	f.deletedBy = actor
	delete(f.posts, id)
	return nil
}

func (f *fakeBlogs) Stats(_ context.Context, id int) (*models.BlogStats, error) {
	if _, err := f.get(id); err != nil {
		return nil, err
	}
	return &models.BlogStats{Likes: 1}, nil
}

func (f *fakeBlogs) Comments(_ context.Context, id int) ([]*models.Comment, error) {
	if _, err := f.get(id); err != nil {
		return nil, err
	}
	return []*models.Comment{{ID: 1, BlogID: id, CommentText: "hi"}}, nil
}

func (f *fakeBlogs) AddComment(_ context.Context, actor services.Actor, id int, text string) (*models.Comment, error) {
	if _, err := f.get(id); err != nil {
		return nil, err
	}
	return &models.Comment{ID: 2, BlogID: id, UserID: actor.UserID, CommentText: text}, nil
}

func (f *fakeBlogs) ToggleLike(_ context.Context, _ services.Actor, id int) (bool, *models.BlogStats, error) {
	if _, err := f.get(id); err != nil {
		return false, nil, err
	}
	return true, &models.BlogStats{Likes: 1}, nil
}

func (f *fakeBlogs) LikeStatus(_ context.Context, _ int, userID int) (bool, error) {
	if userID <= 0 {
		return false, services.Validation("userId is required")
	}
	return true, nil
}

func (f *fakeBlogs) RecordView(_ context.Context, id int, _, _ string) error {
	_, err := f.get(id)
	return err
}

type fakeAdmin struct {
	users     []*models.User
	broadcast func(in services.BroadcastInput) (*services.BroadcastResult, error)
}

func (f *fakeAdmin) ListUsers(_ context.Context, page, limit int) ([]*models.User, models.Pagination, error) {
	_, p := services.Paginate(page, limit, len(f.users))
	return f.users, p, nil
}

func (f *fakeAdmin) SetBan(_ context.Context, userID int, action string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			u.Banned = action == "ban"
			return u, nil
		}
	}
	return nil, services.NotFound("User not found")
}

func (f *fakeAdmin) Broadcast(_ context.Context, in services.BroadcastInput) (*services.BroadcastResult, error) {
	return f.broadcast(in)
}

type fakeNotes struct {
	byUser map[int][]*models.UserNotification
}

func (f *fakeNotes) List(_ context.Context, userID int) ([]*models.UserNotification, error) {
	list := f.byUser[userID]
	if list == nil {
		list = []*models.UserNotification{}
	}
	return list, nil
}

func (f *fakeNotes) MarkRead(_ context.Context, userID, id int) error {
	for _, n := range f.byUser[userID] {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return services.NotFound("Notification not found")
}

type stubRenderer struct{ err error }

func (s stubRenderer) RenderPost(w io.Writer, _ *models.BlogPost, _ []*models.Comment) error {
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, "%PDF-1.3 stub")
	return err
}

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }
