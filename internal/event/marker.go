package event

import "github.com/google/uuid"

const deletedPrefix = "-PASSIVE-"

// MarkDeleted appends a random deleted marker to url so the original
// value can be taken by a new event right away.
func MarkDeleted(url string) string {
	return url + deletedSuffix(uuid.New())
}

func deletedSuffix(id uuid.UUID) string {
	return deletedPrefix + id.String()[:18]
}
