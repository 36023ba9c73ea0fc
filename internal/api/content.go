// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/learnquest/internal/apiclient"
	"github.com/tomtom215/learnquest/internal/models"
	"github.com/tomtom215/learnquest/internal/validation"
)

// ContentService wraps course sections and their content items.
type ContentService struct {
	t apiclient.Doer
}

// NewContentService creates the course-content façade.
func NewContentService(t apiclient.Doer) *ContentService {
	return &ContentService{t: t}
}

// ListSections returns the sections of a course with their contents.
func (s *ContentService) ListSections(ctx context.Context, courseID int64) apiclient.Envelope[[]models.Section] {
	return apiclient.Call[[]models.Section](ctx, s.t, get("/Courses/"+id(courseID)+"/sections", nil))
}

// CreateSection adds a section to a course.
func (s *ContentService) CreateSection(ctx context.Context, courseID int64, input models.SectionInput) apiclient.Envelope[models.Section] {
	return call[models.Section](ctx, s.t, post("/Courses/"+id(courseID)+"/sections", input), input)
}

// UpdateSection replaces a section's title, description and position.
func (s *ContentService) UpdateSection(ctx context.Context, sectionID int64, input models.SectionInput) apiclient.Envelope[models.Section] {
	return call[models.Section](ctx, s.t, put("/Sections/"+id(sectionID), input), input)
}

// DeleteSection deletes a section and its contents.
func (s *ContentService) DeleteSection(ctx context.Context, sectionID int64) apiclient.Envelope[apiclient.Empty] {
	return apiclient.Call[apiclient.Empty](ctx, s.t, del("/Sections/"+id(sectionID)))
}

// CreateContent adds a content item. Video and Document items carry their
// media as the "file" form part.
func (s *ContentService) CreateContent(ctx context.Context, input models.ContentInput, file *File) apiclient.Envelope[models.Content] {
	if input.ContentType == models.ContentVideo || input.ContentType == models.ContentDocument {
		if file == nil || file.Data == nil {
			return apiclient.Envelope[models.Content]{
				Failure: apiclient.FailureInvalidRequest,
				Message: apiclient.MsgInvalidData,
				Errors:  map[string][]string{"file": {"file is required for " + input.ContentType + " content"}},
			}
		}
	}
	return s.sendContent(ctx, http.MethodPost, "/Contents", input, file)
}

// UpdateContent replaces a content item. A nil file keeps the current media.
func (s *ContentService) UpdateContent(ctx context.Context, contentID int64, input models.ContentInput, file *File) apiclient.Envelope[models.Content] {
	return s.sendContent(ctx, http.MethodPut, "/Contents/"+id(contentID), input, file)
}

func (s *ContentService) sendContent(ctx context.Context, method, path string, input models.ContentInput, file *File) apiclient.Envelope[models.Content] {
	if verr := validation.ValidateStruct(input); verr != nil {
		return apiclient.Invalid[models.Content](verr)
	}
	form, err := apiclient.FormFromStruct(input)
	if err != nil {
		return formFailure[models.Content](err)
	}
	file.attach(form, "file")
	return apiclient.Call[models.Content](ctx, s.t, upload(method, path, form))
}

// DeleteContent deletes a content item.
func (s *ContentService) DeleteContent(ctx context.Context, contentID int64) apiclient.Envelope[apiclient.Empty] {
	return apiclient.Call[apiclient.Empty](ctx, s.t, del("/Contents/"+id(contentID)))
}

// ReorderContents sets the position of content items within a section.
func (s *ContentService) ReorderContents(ctx context.Context, req models.ReorderRequest) apiclient.Envelope[apiclient.Empty] {
	return call[apiclient.Empty](ctx, s.t, put("/Contents/reorder", req), req)
}
