package domain

import (
	"path/filepath"

	"github.com/google/uuid"
)

// Category identifies the kind of model artifact a task downloads.
type Category string

const (
	CategoryEmbedding Category = "embedding"
	CategoryLoRA      Category = "lora"
	CategoryModel     Category = "model"
)

// Folder returns the canonical destination subfolder for the category.
func (c Category) Folder() string {
	switch c {
	case CategoryEmbedding:
		return "embeddings"
	case CategoryLoRA:
		return "loras"
	default:
		return "models"
	}
}

// Task is one file to download. Tasks are created by the classifier and
// never mutated afterwards. DestPath is relative to the storage base
// directory.
type Task struct {
	ID       uuid.UUID
	Name     string
	URL      string
	Category Category
	DestPath string
}

// NewTask builds a task with a fresh ID and a destination path derived
// from the category folder and the file name.
func NewTask(name, url string, category Category) Task {
	return Task{
		ID:       uuid.New(),
		Name:     name,
		URL:      url,
		Category: category,
		DestPath: filepath.Join(category.Folder(), name),
	}
}

// ParseError reports an input line that could not be turned into a task.
// Parse errors never abort a batch; they are collected and reported.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}
