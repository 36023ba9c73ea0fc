// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/learnquest/internal/apiclient"
	"github.com/tomtom215/learnquest/internal/cache"
	"github.com/tomtom215/learnquest/internal/models"
	"github.com/tomtom215/learnquest/internal/validation"
)

const categoriesKey = "categories"

// File is an upload attached to a multipart request.
type File struct {
	Name        string
	ContentType string
	Data        io.Reader
}

func (f *File) attach(form *apiclient.Form, field string) {
	if f != nil && f.Data != nil {
		form.AddFile(field, f.Name, f.ContentType, f.Data)
	}
}

// CourseService wraps the /Courses endpoints.
type CourseService struct {
	t          apiclient.Doer
	categories *cache.Cache[[]models.CourseCategory]
}

// NewCourseService creates the course façade. categories caches the
// category list; nil disables caching.
func NewCourseService(t apiclient.Doer, categories *cache.Cache[[]models.CourseCategory]) *CourseService {
	return &CourseService{t: t, categories: categories}
}

// ListCourses returns one page of the catalog.
func (s *CourseService) ListCourses(ctx context.Context, filter models.CourseFilter) apiclient.Envelope[models.CoursePage] {
	q := pageQuery(filter.Page, filter.PageSize)
	setInt(q, "categoryId", filter.CategoryID)
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Level != "" {
		q.Set("level", filter.Level)
	}
	if filter.SortBy != "" {
		q.Set("sortBy", filter.SortBy)
	}
	return call[models.CoursePage](ctx, s.t, get("/Courses", q), filter)
}

// GetCourse returns one course.
func (s *CourseService) GetCourse(ctx context.Context, courseID int64) apiclient.Envelope[models.Course] {
	return apiclient.Call[models.Course](ctx, s.t, get("/Courses/"+id(courseID), nil))
}

// CreateCourse creates a course. The input is sent as multipart form data,
// nested lists flattened as objectives[0].text, with an optional thumbnail.
func (s *CourseService) CreateCourse(ctx context.Context, input models.CourseInput, thumbnail *File) apiclient.Envelope[models.Course] {
	return s.sendCourse(ctx, http.MethodPost, "/Courses", input, thumbnail)
}

// UpdateCourse replaces a course. A nil thumbnail keeps the current one.
func (s *CourseService) UpdateCourse(ctx context.Context, courseID int64, input models.CourseInput, thumbnail *File) apiclient.Envelope[models.Course] {
	return s.sendCourse(ctx, http.MethodPut, "/Courses/"+id(courseID), input, thumbnail)
}

func (s *CourseService) sendCourse(ctx context.Context, method, path string, input models.CourseInput, thumbnail *File) apiclient.Envelope[models.Course] {
	if verr := validation.ValidateStruct(input); verr != nil {
		return apiclient.Invalid[models.Course](verr)
	}
	form, err := apiclient.FormFromStruct(input)
	if err != nil {
		return formFailure[models.Course](err)
	}
	thumbnail.attach(form, "thumbnail")
	return apiclient.Call[models.Course](ctx, s.t, upload(method, path, form))
}

// DeleteCourse deletes a course.
func (s *CourseService) DeleteCourse(ctx context.Context, courseID int64) apiclient.Envelope[apiclient.Empty] {
	return apiclient.Call[apiclient.Empty](ctx, s.t, del("/Courses/"+id(courseID)))
}

// PublishCourse makes a course visible in the catalog.
func (s *CourseService) PublishCourse(ctx context.Context, courseID int64) apiclient.Envelope[models.Course] {
	return apiclient.Call[models.Course](ctx, s.t, post("/Courses/"+id(courseID)+"/publish", nil))
}

// MyCourses returns the courses the signed-in user is enrolled in.
func (s *CourseService) MyCourses(ctx context.Context) apiclient.Envelope[[]models.Course] {
	return apiclient.Call[[]models.Course](ctx, s.t, get("/Courses/my-courses", nil))
}

// Enroll enrolls the signed-in user in a course.
func (s *CourseService) Enroll(ctx context.Context, courseID int64) apiclient.Envelope[models.Enrollment] {
	return apiclient.Call[models.Enrollment](ctx, s.t, post("/Courses/"+id(courseID)+"/enroll", nil))
}

// Categories returns the course categories. Successful results are cached.
func (s *CourseService) Categories(ctx context.Context) apiclient.Envelope[[]models.CourseCategory] {
	fetch := func() apiclient.Envelope[[]models.CourseCategory] {
		return apiclient.Call[[]models.CourseCategory](ctx, s.t, get("/Courses/categories", nil))
	}
	if s.categories == nil {
		return fetch()
	}

	var env apiclient.Envelope[[]models.CourseCategory]
	fetched := false
	data, ok := s.categories.GetOrLoad(categoriesKey, func() ([]models.CourseCategory, bool) {
		env = fetch()
		fetched = true
		return env.Data, env.Success
	})
	if fetched {
		return env
	}
	return apiclient.Envelope[[]models.CourseCategory]{Success: ok, Data: data}
}

// InvalidateCategories drops the cached category list.
func (s *CourseService) InvalidateCategories() {
	if s.categories != nil {
		s.categories.Delete(categoriesKey)
	}
}

// pageQuery is shared by paged list calls.
func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	return q
}
