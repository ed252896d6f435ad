package service

import "errors"

var (
	ErrEmailNotFound = errors.New("email does not exist")
	ErrWrongPassword = errors.New("wrong password")

	ErrUserExists   = errors.New("user exists")
	ErrUserNotFound = errors.New("user not found")

	ErrVideoNotFound   = errors.New("video not found")
	ErrCommentNotFound = errors.New("comment not found")

	ErrAlreadyLiked    = errors.New("already liked")
	ErrAlreadyDisliked = errors.New("already disliked")

	ErrNotAllowed = errors.New("not allowed")

	ErrTimeout    = errors.New("timeout")
	ErrMediaProbe = errors.New("media probe failed")
)
