package dto

import (
	"time"

	"yamdb/internal/microservices/http-api/models"
)

// CommentRequest for creating and updating a comment
type CommentRequest struct {
	Text string `json:"text" binding:"required,min=1"`
}

// CommentResponse for returning comment information
type CommentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

// ToCommentResponse converts a Comment model to CommentResponse DTO
func ToCommentResponse(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}
