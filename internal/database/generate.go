package database

// To regenerate the query layer after editing sqlc/queries or the
// migrations:
//   go generate ./internal/database

//go:generate sh -c "cd sqlc && sqlc generate"
