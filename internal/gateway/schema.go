package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bulletinboard/internal/model"
)

// Response schemas. Pointer fields are required; they are checked after
// decoding so a missing field fails loudly instead of becoming a zero value.

type fileSchema struct {
	FileID   *int64 `json:"fileId"`
	FileURL  string `json:"fileUrl"`
	FileSize int64  `json:"fileSize"`
}

type postSchema struct {
	PostID    *int64       `json:"postId"`
	UserID    *int64       `json:"userId"`
	Title     *string      `json:"title"`
	Content   string       `json:"content"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
	Files     []fileSchema `json:"files"`
}

func (s postSchema) toModel() (*model.Post, error) {
	if s.PostID == nil || s.UserID == nil || s.Title == nil {
		return nil, errors.New("post requires postId, userId and title")
	}
	createdAt, err := parseTime(s.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:        *s.PostID,
		UserID:    *s.UserID,
		Title:     *s.Title,
		Content:   s.Content,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Files:     make([]model.PostFile, 0, len(s.Files)),
	}
	for i, f := range s.Files {
		if f.FileID == nil {
			return nil, fmt.Errorf("file %d requires fileId", i)
		}
		post.Files = append(post.Files, model.PostFile{
			ID:       *f.FileID,
			PostID:   post.ID,
			FileURL:  f.FileURL,
			FileSize: f.FileSize,
		})
	}
	return post, nil
}

type commentSchema struct {
	CommentID       *int64     `json:"commentId"`
	UserID          *int64     `json:"userId"`
	Nickname        *string    `json:"nickname"`
	CommentContent  *string    `json:"commentContent"`
	ParentCommentID *int64     `json:"parentCommentId"`
	ParentNickname  *string    `json:"parentNickname"`
	Depth           *int       `json:"depth"`
	IsDeleted       model.Flag `json:"isDeleted"`
	CreatedAt       string     `json:"createdAt"`
}

func (s commentSchema) toModel(postID int64) (model.Comment, error) {
	if s.CommentID == nil || s.UserID == nil || s.Depth == nil {
		return model.Comment{}, errors.New("comment requires commentId, userId and depth")
	}
	if *s.Depth < 0 {
		return model.Comment{}, fmt.Errorf("comment %d has negative depth %d", *s.CommentID, *s.Depth)
	}
	if !s.IsDeleted && (s.Nickname == nil || s.CommentContent == nil) {
		return model.Comment{}, fmt.Errorf("comment %d requires nickname and commentContent", *s.CommentID)
	}
	createdAt, err := parseTime(s.CreatedAt)
	if err != nil {
		return model.Comment{}, err
	}

	c := model.Comment{
		ID:             *s.CommentID,
		PostID:         postID,
		UserID:         *s.UserID,
		ParentNickname: s.ParentNickname,
		Depth:          *s.Depth,
		IsDeleted:      s.IsDeleted,
		CreatedAt:      createdAt,
	}
	if s.Nickname != nil {
		c.Nickname = *s.Nickname
	}
	if s.CommentContent != nil {
		c.Content = *s.CommentContent
	}
	if s.ParentCommentID != nil {
		c.ParentID = *s.ParentCommentID
	}
	return c, nil
}

func decodeComments(op string, body []byte, postID int64) ([]model.Comment, error) {
	var rows []commentSchema
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	comments := make([]model.Comment, 0, len(rows))
	for _, row := range rows {
		c, err := row.toModel(postID)
		if err != nil {
			return nil, &DecodeError{Op: op, Err: err}
		}
		comments = append(comments, c)
	}
	return comments, nil
}

type postSummarySchema struct {
	PostID       *int64  `json:"postId"`
	UserName     string  `json:"userName"`
	Title        *string `json:"title"`
	CreatedAt    string  `json:"createdAt"`
	CommentCount int     `json:"commentCount"`
}

type postListSchema struct {
	PostList    *[]postSummarySchema `json:"postList"`
	CurrentPage int                  `json:"currentPage"`
	TotalPages  int                  `json:"totalPages"`
}

func (s postListSchema) toModel() (*model.PostListResponse, error) {
	if s.PostList == nil {
		return nil, errors.New("post list requires postList")
	}
	resp := &model.PostListResponse{
		PostList:    make([]model.PostSummary, 0, len(*s.PostList)),
		CurrentPage: s.CurrentPage,
		TotalPages:  s.TotalPages,
	}
	for i, p := range *s.PostList {
		if p.PostID == nil || p.Title == nil {
			return nil, fmt.Errorf("post %d requires postId and title", i)
		}
		createdAt, err := parseTime(p.CreatedAt)
		if err != nil {
			return nil, err
		}
		resp.PostList = append(resp.PostList, model.PostSummary{
			ID:           *p.PostID,
			UserName:     p.UserName,
			Title:        *p.Title,
			CreatedAt:    createdAt,
			CommentCount: p.CommentCount,
		})
	}
	return resp, nil
}

type deleteSchema struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

type loginSchema struct {
	Success     bool    `json:"success"`
	Username    *string `json:"username"`
	Nickname    string  `json:"nickname"`
	AccessToken *string `json:"accessToken"`
	ExpiresIn   int     `json:"expiresIn"`
}

type meSchema struct {
	Authenticated *bool  `json:"authenticated"`
	Username      string `json:"username"`
	Nickname      string `json:"nickname"`
}

type errorSchema struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// successFlag accepts either a bare boolean or {"success": bool}.
func successFlag(body []byte) (bool, error) {
	var b bool
	if err := json.Unmarshal(body, &b); err == nil {
		return b, nil
	}
	var s deleteSchema
	if err := json.Unmarshal(body, &s); err != nil {
		return false, err
	}
	if s.Success == nil {
		return false, errors.New("response requires success")
	}
	return *s.Success, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
