package posts

import "errors"

var (
	ErrNotFound = errors.New("post not found")
	ErrIDExists = errors.New("post id already exists")
	ErrConflict = errors.New("concurrent update conflict")
	ErrInvalid  = errors.New("invalid post")
)
