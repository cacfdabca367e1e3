// Package models provides the data structures used throughout the application.
package models

// CategoryUncategorized is the sentinel label assigned when no model is
// available or a prediction fails.
const CategoryUncategorized = "Uncategorized"

// DateLayout is the storage format for transaction dates.
const DateLayout = "2006-01-02"
