// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Field is one flattened scalar form field.
type Field struct {
	Key   string
	Value string
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        io.Reader
}

// Form is a multipart/form-data body. Nested values are flattened with
// indexed keys:
//
//	form.Set("objectives", []models.CourseObjective{{Text: "Go"}})
//	// objectives[0].text=Go, objectives[0].orderIndex=0
//
// The Content-Type (with its boundary) is always produced by the encoder.
type Form struct {
	fields []Field
	files  []formFile
}

// NewForm creates an empty form.
func NewForm() *Form {
	return &Form{}
}

// FormFromStruct flattens the JSON representation of v into a form.
func FormFromStruct(v any) (*Form, error) {
	f := NewForm()
	if err := f.SetAll(v); err != nil {
		return nil, err
	}
	return f, nil
}

// SetAll flattens every top-level JSON member of v into the form.
func (f *Form) SetAll(v any) error {
	tree, err := toTree(v)
	if err != nil {
		return err
	}
	obj, ok := tree.(map[string]any)
	if !ok {
		return fmt.Errorf("form source must be an object, got %T", tree)
	}
	f.flatten("", obj)
	return nil
}

// Set adds key with value, flattening slices, maps and structs. Nil values
// are skipped.
func (f *Form) Set(key string, value any) *Form {
	if s, ok := scalar(value); ok {
		f.fields = append(f.fields, Field{Key: key, Value: s})
		return f
	}
	tree, err := toTree(value)
	if err != nil {
		f.fields = append(f.fields, Field{Key: key, Value: fmt.Sprint(value)})
		return f
	}
	f.flatten(key, tree)
	return f
}

// AddFile attaches a file part. An empty contentType lets the encoder use
// application/octet-stream.
func (f *Form) AddFile(field, filename, contentType string, data io.Reader) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, contentType: contentType, data: data})
	return f
}

// AddFileBytes attaches an in-memory file part.
func (f *Form) AddFileBytes(field, filename, contentType string, data []byte) *Form {
	return f.AddFile(field, filename, contentType, bytes.NewReader(data))
}

// Fields returns the flattened scalar fields in insertion order.
func (f *Form) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Get returns the first value stored under key.
func (f *Form) Get(key string) (string, bool) {
	for _, fld := range f.fields {
		if fld.Key == key {
			return fld.Value, true
		}
	}
	return "", false
}

// FileCount returns the number of attached files.
func (f *Form) FileCount() int {
	return len(f.files)
}

// Encode writes the multipart body and returns it with its Content-Type.
func (f *Form) Encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, fld := range f.fields {
		if err := w.WriteField(fld.Key, fld.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", fld.Key, err)
		}
	}

	for _, file := range f.files {
		part, err := createFilePart(w, file)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %s: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.data); err != nil {
			return nil, "", fmt.Errorf("failed to write file %s: %w", file.filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func createFilePart(w *multipart.Writer, file formFile) (io.Writer, error) {
	if file.contentType == "" {
		return w.CreateFormFile(file.field, file.filename)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
	h.Set("Content-Type", file.contentType)
	return w.CreatePart(h)
}

// flatten walks a decoded JSON tree. Object members are joined with ".",
// array elements with "[i]". Object keys are visited in sorted order so the
// encoded body is deterministic.
func (f *Form) flatten(prefix string, node any) {
	switch v := node.(type) {
	case nil:
		return
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			f.flatten(key, v[k])
		}
	case []any:
		for i, item := range v {
			f.flatten(prefix+"["+strconv.Itoa(i)+"]", item)
		}
	default:
		s, _ := scalar(v)
		f.fields = append(f.fields, Field{Key: prefix, Value: s})
	}
}

// scalar formats leaf values the way the backend's form binder expects.
func scalar(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case json.Number:
		return val.String(), true
	case time.Time:
		return val.Format(time.RFC3339), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}

// toTree round-trips v through JSON so struct tags decide field names.
func toTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form value: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to decode form value: %w", err)
	}
	return tree, nil
}
