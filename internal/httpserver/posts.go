package httpserver

import (
	"net/http"
	"strconv"

	"github.com/mwalczyk/socialfeed/internal/domain"
)

// postResponse is the wire shape of a post.
type postResponse struct {
	ID        string            `json:"_id"`
	AuthorID  string            `json:"author_id"`
	Timestamp int64             `json:"timestamp"`
	Content   string            `json:"content"`
	Photo     *string           `json:"photo"`
	Likes     []string          `json:"likes"`
	Comments  []commentResponse `json:"comments"`
}

type commentResponse struct {
	AuthorID  string `json:"author_id"`
	Timestamp int64  `json:"timestamp"`
	Content   string `json:"content"`
}

func toPostResponse(p *domain.Post) postResponse {
	resp := postResponse{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Timestamp: p.CreatedAt.UnixMilli(),
		Content:   p.Content,
		Likes:     p.Likes,
		Comments:  make([]commentResponse, len(p.Comments)),
	}
	if p.Photo != "" {
		photo := p.Photo
		resp.Photo = &photo
	}
	if resp.Likes == nil {
		resp.Likes = []string{}
	}
	for i, c := range p.Comments {
		resp.Comments[i] = toCommentResponse(&c)
	}
	return resp
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		AuthorID:  c.AuthorID,
		Timestamp: c.CreatedAt.UnixMilli(),
		Content:   c.Content,
	}
}

// handleGetFeed serves one feed window. A missing start defaults to page 1;
// a present but non-numeric or non-positive start is rejected.
func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	start := 1
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "start must be a positive integer")
			return
		}
		start = parsed
	}

	posts, err := s.feed.GetFeed(r.Context(), start, r.URL.Query().Get("query"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := make([]postResponse, len(posts))
	for i := range posts {
		resp[i] = toPostResponse(&posts[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": resp})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthorID string `json:"authorId"`
		Content  string `json:"content"`
		Photo    string `json:"photo"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := s.feed.CreatePost(r.Context(), sessionToken(r), req.AuthorID, req.Content, req.Photo)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"post":    toPostResponse(post),
		"message": "Post added successfully",
	})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	postID := r.URL.Query().Get("postId")
	if postID == "" {
		writeError(w, http.StatusBadRequest, "postId is required")
		return
	}

	if err := s.feed.DeletePost(r.Context(), sessionToken(r), postID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID  string  `json:"postId"`
		Content *string `json:"content"`
		Photo   *string `json:"photo"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := s.feed.UpdatePost(r.Context(), sessionToken(r), req.PostID, req.Content, req.Photo)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"post":    toPostResponse(post),
		"message": "Post has been updated",
	})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID  string `json:"postId"`
		Comment struct {
			AuthorID string `json:"author_id"`
			Content  string `json:"content"`
		} `json:"comment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := s.feed.AddComment(r.Context(), sessionToken(r), req.PostID, req.Comment.AuthorID, req.Comment.Content)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"addedComment": toCommentResponse(comment),
		"message":      "Comment added successfully",
	})
}

func (s *Server) handleAddLike(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID string `json:"postId"`
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.feed.AddLike(r.Context(), sessionToken(r), req.PostID, req.UserID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Like added successfully"})
}

func (s *Server) handleRemoveLike(w http.ResponseWriter, r *http.Request) {
	postID := r.URL.Query().Get("postId")
	userID := r.URL.Query().Get("userId")

	if err := s.feed.RemoveLike(r.Context(), sessionToken(r), postID, userID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Like has been removed"})
}
