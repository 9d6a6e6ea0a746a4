package catalog

import (
	"strings"

	apperrors "streaming-db/internal/errors"
)

const genreSeparator = ","

// appendGenre adds genre to a comma-separated list, keeping the existing
// order. A genre already present under case-insensitive comparison is a
// conflict.
func appendGenre(list, genre string) (string, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return "", apperrors.BadRequest("genre is empty")
	}

	genres := splitGenres(list)
	for _, g := range genres {
		if strings.EqualFold(g, genre) {
			return "", apperrors.Conflict("genre %q already present", g)
		}
	}

	return strings.Join(append(genres, genre), genreSeparator), nil
}

func splitGenres(list string) []string {
	var genres []string
	for _, g := range strings.Split(list, genreSeparator) {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}
