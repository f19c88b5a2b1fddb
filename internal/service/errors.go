package service

import "errors"

var (
	ErrInternal            = errors.New("internal server error")
	ErrPostNotFound        = errors.New("Post not found")
	ErrNotAuthorized       = errors.New("Not authorized")
	ErrEmptyPostFields     = errors.New("Title and content are required")
	ErrEmptyCommentText    = errors.New("Text is required")
	ErrInvalidReactionType = errors.New("Reaction type must be one of like, love, laugh")
	ErrUserAlreadyExists   = errors.New("User already exists")
	ErrInvalidCredentials  = errors.New("Invalid credentials")
	ErrInvalidToken        = errors.New("Token is not valid")
)
