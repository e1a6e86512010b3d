package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bloghive/internal/pdf"
	"bloghive/internal/services"
)

type BlogHandler struct {
	blogs    services.BlogService
	renderer pdf.Renderer
}

func NewBlogHandler(blogs services.BlogService, renderer pdf.Renderer) *BlogHandler {
	return &BlogHandler{blogs: blogs, renderer: renderer}
}

type BlogRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
}

type CommentRequest struct {
	CommentText string `json:"commentText" binding:"required"`
}

func (r BlogRequest) input() services.BlogInput {
	return services.BlogInput{Title: r.Title, Description: r.Description, Category: r.Category}
}

func blogID(c *gin.Context) (int, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "Invalid blog ID")
	}
	return id, ok
}

// @Summary      List published posts
// @Tags         Blogs
// @Produce      json
// @Param        page      query  int     false  "page, from 1"
// @Param        limit     query  int     false  "page size"
// @Param        category  query  string  false  "category"
// @Param        authorId  query  int     false  "author id"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/blogs [get]
func (h *BlogHandler) List(c *gin.Context) {
	posts, p, err := h.blogs.List(c.Request.Context(),
		queryInt(c, "page", 1), queryInt(c, "limit", 10), c.Query("category"), queryInt(c, "authorId", 0))
	if err != nil {
		writeError(c, "blog][list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts, "pagination": p})
}

// @Summary      Create post
// @Tags         Blogs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  BlogRequest  true  "post"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /api/blogs [post]
func (h *BlogHandler) Create(c *gin.Context) {
	var req BlogRequest
	if !bindJSON(c, "blog][create", &req) {
		return
	}
	post, err := h.blogs.Create(c.Request.Context(), getActor(c), req.input())
	if err != nil {
		writeError(c, "blog][create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Blog post created successfully", "post": post})
}

// @Summary      Get post
// @Tags         Blogs
// @Produce      json
// @Param        id  path  int  true  "post id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/blogs/{id} [get]
func (h *BlogHandler) Get(c *gin.Context) {
	id, ok := blogID(c)
	if !ok {
		return
	}
	post, err := h.blogs.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, "blog][get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

// @Summary      Update post
// @Tags         Blogs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int          true  "post id"
// @Param        body  body  BlogRequest  true  "post"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/blogs/{id} [put]
func (h *BlogHandler) Update(c *gin.Context) {
	id, ok := blogID(c)
	if !ok {
		return
	}
	var req BlogRequest
	if !bindJSON(c, "blog][update", &req) {
		return
	}
	post, err := h.blogs.Update(c.Request.Context(), getActor(c), id, req.input())
	if err != nil {
		writeError(c, "blog][update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Blog post updated successfully", "post": post})
}

// @Summary      Delete post
// @Tags         Blogs
// @Security     BearerAuth
// @Param        id  path  int  true  "post id"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/blogs/{id} [delete]
func (h *BlogHandler) Delete(c *gin.Context) {
	id, ok := blogID(c)
	if !ok {
		return
	}
	if err := h.blogs.Delete(c.Request.Context(), getActor(c), id); err != nil {
		writeError(c, "blog][delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Blog post deleted successfully"})
}

func (h *BlogHandler) Stats(c *gin.Context) {
	id, ok := blogID(c)
	if !ok {
		return
	}
	st, err := h.blogs.Stats(c.Request.Context(), id)
	if err != nil {
		writeError(c, "blog][stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": st})
}

func (h *BlogHandler) Comments(c *gin.Context) {
	id, ok := blogID(c)
	if !ok {
		return
	}
	list, err := h.blogs.Comments(c.Request.Context(), id)
	if err != nil {
		writeError(c, "blog][comments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comments": list})
}

func (h *BlogHandler) LikeStatus(c *gin.Context) {
	id, ok := blogID(c)
	if !ok {
		return
	}
	liked, err := h.blogs.LikeStatus(c.Request.Context(), id, queryInt(c, "userId", 0))
	if err != nil {
		writeError(c, "blog][like-status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "liked": liked})
}

// @Summary      Toggle like
// @Tags         Blogs
// @Security     BearerAuth
// @Param        id  path  int  true  "post id"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/blogs/{id}/like [post]
func (h *BlogHandler) ToggleLike(c *gin.Context) {
	id, ok := blogID(c)
	if !ok {
		return
	}
	liked, st, err := h.blogs.ToggleLike(c.Request.Context(), getActor(c), id)
	if err != nil {
		writeError(c, "blog][like", err)
		return
	}
	msg := "Blog post unliked"
	if liked {
		msg = "Blog post liked"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg, "liked": liked, "stats": st})
}

func (h *BlogHandler) AddComment(c *gin.Context) {
	id, ok := blogID(c)
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, "blog][comment", &req) {
		return
	}
	comment, err := h.blogs.AddComment(c.Request.Context(), getActor(c), id, req.CommentText)
	if err != nil {
		writeError(c, "blog][comment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Comment added successfully", "comment": comment})
}

func (h *BlogHandler) RecordView(c *gin.Context) {
	id, ok := blogID(c)
	if !ok {
		return
	}
	if err := h.blogs.RecordView(c.Request.Context(), id, c.ClientIP(), c.Request.UserAgent()); err != nil {
		writeError(c, "blog][view", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "View recorded"})
}

// @Summary      Export post as PDF
// @Tags         Blogs
// @Produce      application/pdf
// @Param        id  path  int  true  "post id"
// @Success      200  {file}  binary
// @Router       /api/blogs/{id}/pdf [get]
func (h *BlogHandler) PDF(c *gin.Context) {
	id, ok := blogID(c)
	if !ok {
		return
	}
	post, err := h.blogs.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, "blog][pdf", err)
		return
	}
	comments, err := h.blogs.Comments(c.Request.Context(), id)
	if err != nil {
		writeError(c, "blog][pdf", err)
		return
	}
	var buf bytes.Buffer
	if err := h.renderer.RenderPost(&buf, post, comments); err != nil {
		writeError(c, "blog][pdf", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="post_%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
