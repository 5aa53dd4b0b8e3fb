package service

import "errors"

var (
	ErrBoardNotFound = errors.New("board not found")
	ErrBoardExists   = errors.New("board already exists")
	ErrNotAuthorized = errors.New("not authorized")
)
