package main

import "errors"

// Sentinel errors for command operations
var (
	ErrInputFileNotExist  = errors.New("input file does not exist")
	ErrDocumentNotMapping = errors.New("document root must be a mapping")
)
