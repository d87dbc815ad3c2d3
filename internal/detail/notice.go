package detail

import (
	"errors"
	"strings"

	"bulletinboard/internal/editor"
	"bulletinboard/internal/gateway"
	"bulletinboard/internal/model"
)

// Comment actions, as they appear in notices.
const (
	ActionCreate = "post"
	ActionUpdate = "edit"
	ActionDelete = "delete"
)

// Page notices
const (
	NoticePostUnavailable = "Unable to load the post."
	NoticePostDeleted     = "The post has been deleted."
	NoticeDeleteFailed    = "Failed to delete the post."
	NoticeDeleteError     = "An error occurred while deleting the post."
	NoticeEmptyComment    = "Please enter a comment."
	NoticeLoginRequired   = "Login is required."
	NoticeCommentTooLong  = "Comments are limited to 255 characters."
	NoticeCommentMissing  = "The comment no longer exists."
)

// Notice maps a failed comment action to the message shown to the user.
func Notice(err error, action string) string {
	switch {
	case errors.Is(err, editor.ErrEmptyComment):
		return NoticeEmptyComment
	case errors.Is(err, editor.ErrTooLong):
		return NoticeCommentTooLong
	case errors.Is(err, model.ErrCommentNotFound), errors.Is(err, model.ErrCommentDeleted):
		return NoticeCommentMissing
	case gateway.IsAuthError(err):
		if action == ActionCreate {
			return NoticeLoginRequired
		}
		return "You do not have permission to " + action + " this comment."
	default:
		return "Failed to " + action + " the comment."
	}
}

// DeletePostNotice maps the outcome of DeletePost to a message.
func DeletePostNotice(err error) string {
	switch {
	case err == nil:
		return NoticePostDeleted
	case errors.Is(err, ErrDeleteRejected):
		if _, msg, ok := strings.Cut(err.Error(), ": "); ok && msg != "" {
			return msg
		}
		return NoticeDeleteFailed
	default:
		return NoticeDeleteError
	}
}
