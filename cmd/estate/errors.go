package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jackzampolin/estate/internal/analyzer"
	"github.com/jackzampolin/estate/internal/estate"
	"github.com/jackzampolin/estate/internal/pdftext"
	"github.com/jackzampolin/estate/internal/providers"
)

// Exit codes for the analyze command's failure kinds.
const (
	exitError      = 1
	exitNotFound   = 2
	exitExtraction = 3
	exitSchema     = 4
	exitRemote     = 5
	exitNoProvider = 6
)

// exitCode prints err and returns the process exit status for it.
func exitCode(err error) int {
	fmt.Fprintln(os.Stderr, "Error:", err)

	switch {
	case errors.Is(err, pdftext.ErrNotFound):
		return exitNotFound
	case errors.Is(err, pdftext.ErrExtraction):
		return exitExtraction
	case errors.Is(err, estate.ErrSchemaValidation):
		return exitSchema
	case errors.Is(err, providers.ErrRemoteService):
		return exitRemote
	case errors.Is(err, analyzer.ErrNoProvider):
		return exitNoProvider
	default:
		return exitError
	}
}
