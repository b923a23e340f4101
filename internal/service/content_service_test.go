package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"lms-be/internal/dto"
	"lms-be/internal/entity"
	"lms-be/internal/pkg/render"
	"lms-be/internal/pkg/serverutils"
	"lms-be/pkg/richtext"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisherService struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *recordingPublisherService) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return p.err
}

func (p *recordingPublisherService) contentIds(t *testing.T) []uuid.UUID {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(p.payloads))
	for _, raw := range p.payloads {
		var msg dto.ContentSavedMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		ids = append(ids, msg.ContentId)
	}
	return ids
}

func seedCourse(store *fakeStore) entity.Course {
	course := entity.Course{Id: uuid.New(), Title: "Course"}
	store.courses[course.Id] = course
	return course
}

func TestContentServiceCreateNormalizes(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	course := seedCourse(store)
	pub := &recordingPublisherService{}
	svc := NewContentService(store, pub, nil, testLogger())

	res, err := svc.Create(ctx, &dto.CreateContentRequest{
		CourseId: course.Id,
		Title:    "Lesson",
		Content:  `<p>Hello <b>there</b></p><pre><code class="language-go">x := 1</code></pre>`,
		Order:    1,
	})
	require.NoError(t, err)

	doc, err := richtext.Parse(res.Content)
	require.NoError(t, err)
	assert.Equal(t, res.Content, doc.Serialize(), "stored markup is canonical")
	require.Len(t, res.Outline, 2)
	assert.Equal(t, "code", res.Outline[1].Kind)
	assert.Equal(t, "go", res.Outline[1].Language)
	assert.False(t, res.Highlighted)

	assert.Equal(t, []uuid.UUID{res.Id}, pub.contentIds(t))
}

func TestContentServiceCreateUnknownCourse(t *testing.T) {
	svc := NewContentService(newFakeStore(), &recordingPublisherService{}, nil, testLogger())
	_, err := svc.Create(context.Background(), &dto.CreateContentRequest{CourseId: uuid.New(), Title: "x"})
	assert.Equal(t, http.StatusNotFound, serverutils.StatusOf(err))
}

func TestContentServicePublishFailureKeepsWrite(t *testing.T) {
	store := newFakeStore()
	course := seedCourse(store)
	svc := NewContentService(store, &recordingPublisherService{err: errors.New("bus down")}, nil, testLogger())

	res, err := svc.Create(context.Background(), &dto.CreateContentRequest{CourseId: course.Id, Title: "x", Content: "<p>a</p>"})
	require.NoError(t, err)
	assert.Contains(t, store.contents, res.Id)
}

func TestContentServiceListByCourse(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	course := seedCourse(store)
	for _, order := range []int{3, 1, 2} {
		id := uuid.New()
		store.contents[id] = entity.Content{Id: id, CourseId: course.Id, Order: order}
	}
	other := uuid.New()
	store.contents[other] = entity.Content{Id: other, CourseId: uuid.New()}

	svc := NewContentService(store, &recordingPublisherService{}, nil, testLogger())
	list, err := svc.ListByCourse(ctx, course.Id)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, item := range list {
		assert.Equal(t, i+1, item.Order)
		assert.NotNil(t, item.Outline)
	}

	_, err = svc.ListByCourse(ctx, uuid.New())
	assert.Equal(t, http.StatusNotFound, serverutils.StatusOf(err))
}

func TestContentServiceUpdate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	course := seedCourse(store)
	pub := &recordingPublisherService{}
	svc := NewContentService(store, pub, nil, testLogger())

	created, err := svc.Create(ctx, &dto.CreateContentRequest{CourseId: course.Id, Title: "x", Content: "<p>a</p>"})
	require.NoError(t, err)
	stored := store.contents[created.Id]
	stored.Highlighted = true
	store.contents[created.Id] = stored

	title := "renamed"
	res, err := svc.Update(ctx, &dto.UpdateContentRequest{Id: created.Id, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", res.Title)
	assert.True(t, res.Highlighted, "title-only edits keep highlighting")
	assert.Len(t, pub.contentIds(t), 1)

	body := "<p>b</p>"
	res, err = svc.Update(ctx, &dto.UpdateContentRequest{Id: created.Id, Content: &body})
	require.NoError(t, err)
	assert.False(t, res.Highlighted)
	assert.Len(t, pub.contentIds(t), 2)

	require.NoError(t, svc.Delete(ctx, created.Id))
	_, err = svc.Get(ctx, created.Id)
	assert.Equal(t, http.StatusNotFound, serverutils.StatusOf(err))
}

func TestContentServiceRendersHighlightedCode(t *testing.T) {
	store := newFakeStore()
	course := seedCourse(store)
	renderer := render.NewRenderer(richtext.NewChromaHighlighter("github"))
	svc := NewContentService(store, &recordingPublisherService{}, renderer, testLogger())

	res, err := svc.Create(context.Background(), &dto.CreateContentRequest{
		CourseId: course.Id,
		Title:    "x",
		Content:  `<pre><code class="language-go">x := 1</code></pre><p onclick="alert(1)">hi</p>`,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Content, `data-highlighted="yes"`)
	assert.NotContains(t, res.Content, "onclick")
}
