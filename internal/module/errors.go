package module

import "errors"

var (
	ErrAlreadyCreated = errors.New("module already created")
	ErrReleased       = errors.New("module already released")
	ErrNotCreated     = errors.New("module is not created")
)
