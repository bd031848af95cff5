package cli

import (
	"errors"

	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
	"github.com/specialistvlad/pathfinder/internal/heuristic"
	"github.com/specialistvlad/pathfinder/internal/search"
)

// requestError turns errors caused by bad user input into usage errors.
func requestError(err error) error {
	switch {
	case errors.Is(err, search.ErrInvalidAlgorithm),
		errors.Is(err, heuristic.ErrInvalidHeuristic),
		errors.Is(err, graphstore.ErrGraphNotFound),
		errors.Is(err, graph.ErrNodeNotFound):
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	default:
		return err
	}
}
