// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package models

import "time"

// Course levels.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Course is a catalog entry.
type Course struct {
	CourseID         int64             `json:"courseId"`
	Title            string            `json:"title"`
	ShortDescription string            `json:"shortDescription,omitempty"`
	Description      string            `json:"description,omitempty"`
	CategoryID       int64             `json:"categoryId"`
	CategoryName     string            `json:"categoryName,omitempty"`
	Level            string            `json:"level"`
	Price            float64           `json:"price"`
	Language         string            `json:"language,omitempty"`
	ThumbnailURL     string            `json:"thumbnailUrl,omitempty"`
	IsPublished      bool              `json:"isPublished"`
	InstructorID     int64             `json:"instructorId"`
	InstructorName   string            `json:"instructorName,omitempty"`
	EnrollmentCount  int               `json:"enrollmentCount"`
	Rating           float64           `json:"rating"`
	DurationMinutes  int               `json:"durationMinutes"`
	Objectives       []CourseObjective `json:"objectives,omitempty"`
	Requirements     []CourseObjective `json:"requirements,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        *time.Time        `json:"updatedAt,omitempty"`
}

// CourseObjective is one learning outcome or prerequisite line.
type CourseObjective struct {
	Text       string `json:"text" validate:"required,max=500"`
	OrderIndex int    `json:"orderIndex"`
}

// CourseCategory groups courses.
type CourseCategory struct {
	CategoryID  int64  `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CourseCount int    `json:"courseCount"`
}

// CourseFilter selects a page of the catalog.
type CourseFilter struct {
	Page       int    `json:"page,omitempty" validate:"gte=0"`
	PageSize   int    `json:"pageSize,omitempty" validate:"gte=0,lte=100"`
	Search     string `json:"search,omitempty"`
	CategoryID int64  `json:"categoryId,omitempty"`
	Level      string `json:"level,omitempty" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	SortBy     string `json:"sortBy,omitempty"`
}

// CoursePage is one page of courses.
type CoursePage struct {
	Courses    []Course `json:"courses"`
	TotalCount int      `json:"totalCount"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalPages int      `json:"totalPages"`
}

// CourseInput is the form of create and update calls. It is sent as
// multipart; nested slices are flattened to indexed keys such as
// objectives[0].text.
type CourseInput struct {
	Title            string            `json:"title" validate:"required,max=200"`
	ShortDescription string            `json:"shortDescription,omitempty" validate:"max=500"`
	Description      string            `json:"description" validate:"required"`
	CategoryID       int64             `json:"categoryId" validate:"required,gt=0"`
	Level            string            `json:"level" validate:"required,oneof=Beginner Intermediate Advanced"`
	Price            float64           `json:"price" validate:"gte=0"`
	Language         string            `json:"language,omitempty"`
	Objectives       []CourseObjective `json:"objectives,omitempty" validate:"dive"`
	Requirements     []CourseObjective `json:"requirements,omitempty" validate:"dive"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	EnrollmentID int64      `json:"enrollmentId"`
	CourseID     int64      `json:"courseId"`
	UserID       int64      `json:"userId"`
	Progress     float64    `json:"progress"`
	EnrolledAt   time.Time  `json:"enrolledAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}
