package storage

import "errors"

var (
	ErrUserExists      = errors.New("user exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrVideoNotFound   = errors.New("video not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrVoteExists      = errors.New("vote exists")
	ErrVoteNotFound    = errors.New("vote not found")

	ErrContextCancelled = errors.New("context cancelled")
)
