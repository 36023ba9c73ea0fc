// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package models

// Content types.
const (
	ContentVideo    = "Video"
	ContentDocument = "Document"
	ContentText     = "Text"
	ContentQuiz     = "Quiz"
)

// Section is an ordered group of contents within a course.
type Section struct {
	SectionID   int64     `json:"sectionId"`
	CourseID    int64     `json:"courseId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OrderIndex  int       `json:"orderIndex"`
	Contents    []Content `json:"contents,omitempty"`
}

// SectionInput creates or updates a section.
type SectionInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty"`
	OrderIndex  int    `json:"orderIndex" validate:"gte=0"`
}

// Content is a lesson item.
type Content struct {
	ContentID       int64  `json:"contentId"`
	SectionID       int64  `json:"sectionId"`
	Title           string `json:"title"`
	ContentType     string `json:"contentType"`
	Description     string `json:"description,omitempty"`
	TextContent     string `json:"textContent,omitempty"`
	FileURL         string `json:"fileUrl,omitempty"`
	DurationSeconds int    `json:"durationSeconds"`
	OrderIndex      int    `json:"orderIndex"`
	IsPreview       bool   `json:"isPreview"`
}

// ContentInput creates or updates a content item. The file, when present,
// travels as a separate multipart part.
type ContentInput struct {
	SectionID       int64  `json:"sectionId" validate:"required,gt=0"`
	Title           string `json:"title" validate:"required,max=200"`
	ContentType     string `json:"contentType" validate:"required,oneof=Video Document Text Quiz"`
	Description     string `json:"description,omitempty"`
	TextContent     string `json:"textContent,omitempty"`
	DurationSeconds int    `json:"durationSeconds" validate:"gte=0"`
	OrderIndex      int    `json:"orderIndex" validate:"gte=0"`
	IsPreview       bool   `json:"isPreview"`
}

// ContentOrder is one entry of a reorder request.
type ContentOrder struct {
	ContentID  int64 `json:"contentId" validate:"required,gt=0"`
	OrderIndex int   `json:"orderIndex" validate:"gte=0"`
}

// ReorderRequest moves contents within a section.
type ReorderRequest struct {
	SectionID int64          `json:"sectionId" validate:"required,gt=0"`
	Items     []ContentOrder `json:"items" validate:"required,min=1,dive"`
}
