package service

import (
	"context"
	"encoding/json"
	"html"
	"mime/multipart"
	"net/http"
	"sync"
	"testing"
	"time"

	"lms-be/internal/config"
	"lms-be/internal/dto"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/repository/memory"
	"lms-be/pkg/richtext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainHighlighter struct{}

func (plainHighlighter) Highlight(lang, source string) (string, error) {
	return html.EscapeString(source), nil
}

type fakeRooms struct {
	mu     sync.Mutex
	frames map[string][]dto.EditorMessage
	closed []string
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{frames: map[string][]dto.EditorMessage{}}
}

func (r *fakeRooms) Publish(room string, data []byte) {
	var msg dto.EditorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames[room] = append(r.frames[room], msg)
}

func (r *fakeRooms) CloseRoom(room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, room)
}

func (r *fakeRooms) sent(room string) []dto.EditorMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dto.EditorMessage(nil), r.frames[room]...)
}

func newTestEditorService(rooms *fakeRooms) *editorService {
	return NewEditorService(
		memory.NewEditorRegistry(time.Hour),
		rooms,
		plainHighlighter{},
		config.EditorConfig{DefaultLanguage: "go"},
		testLogger(),
		nil,
	).(*editorService)
}

func firstNode(t *testing.T, s *editorService, id string) richtext.NodeID {
	t.Helper()
	e, ok := s.registry.Get(id)
	require.True(t, ok)
	blocks := e.Document().Blocks()
	require.NotEmpty(t, blocks)
	return blocks[0].ID
}

func TestEditorServiceCommandBroadcasts(t *testing.T) {
	ctx := context.Background()
	rooms := newFakeRooms()
	svc := newTestEditorService(rooms)

	sess, err := svc.Create(ctx, &dto.CreateEditorSessionRequest{Value: "<p>hello world</p>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>hello world</p>", sess.Value)

	node := firstNode(t, svc, sess.Id)
	sel := &richtext.Selection{Anchor: richtext.Position{Node: node}, Focus: richtext.Position{Node: node, Offset: 5}}

	res, err := svc.Command(ctx, sess.Id, &dto.EditorCommandRequest{Command: "bold", Selection: sel})
	require.NoError(t, err)
	assert.Equal(t, "<p><b>hello</b> world</p>", res.Value)

	frames := rooms.sent(sess.Id)
	require.Len(t, frames, 1)
	assert.Equal(t, EditorMessageChange, frames[0].Type)
	assert.Equal(t, res.Value, frames[0].Value)
	assert.Equal(t, res.Version, frames[0].Version)

	// Same toggle on the same selection restores the original markup.
	res, err = svc.Command(ctx, sess.Id, &dto.EditorCommandRequest{Command: "bold"})
	require.NoError(t, err)
	assert.Equal(t, "<p>hello world</p>", res.Value)
}

func TestEditorServiceCodeBlockLanguage(t *testing.T) {
	ctx := context.Background()
	svc := newTestEditorService(newFakeRooms())
	sess, err := svc.Create(ctx, &dto.CreateEditorSessionRequest{})
	require.NoError(t, err)

	res, err := svc.Command(ctx, sess.Id, &dto.EditorCommandRequest{Command: "codeBlock", Language: "python"})
	require.NoError(t, err)
	assert.Contains(t, res.Value, `class="language-python"`)

	res, err = svc.Command(ctx, sess.Id, &dto.EditorCommandRequest{Command: "codeBlock"})
	require.NoError(t, err)
	assert.Contains(t, res.Value, `class="language-go"`)
}

func TestEditorServiceRejects(t *testing.T) {
	ctx := context.Background()
	svc := newTestEditorService(newFakeRooms())
	sess, err := svc.Create(ctx, &dto.CreateEditorSessionRequest{Value: "<p>a</p>"})
	require.NoError(t, err)

	_, err = svc.Command(ctx, sess.Id, &dto.EditorCommandRequest{Command: "strike"})
	assert.Equal(t, http.StatusBadRequest, serverutils.StatusOf(err))

	bad := &richtext.Selection{Anchor: richtext.Position{Node: 999}, Focus: richtext.Position{Node: 999}}
	_, err = svc.Command(ctx, sess.Id, &dto.EditorCommandRequest{Command: "bold", Selection: bad})
	assert.Equal(t, http.StatusBadRequest, serverutils.StatusOf(err))

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, serverutils.StatusOf(err))
}

func TestEditorServiceSetValueBroadcastsOnlyChanges(t *testing.T) {
	ctx := context.Background()
	rooms := newFakeRooms()
	svc := newTestEditorService(rooms)
	sess, err := svc.Create(ctx, &dto.CreateEditorSessionRequest{Value: "<p>a</p>"})
	require.NoError(t, err)

	res, err := svc.SetValue(ctx, sess.Id, &dto.SetEditorValueRequest{Value: "<p>b</p>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>b</p>", res.Value)
	assert.Equal(t, uint64(1), res.Version)

	_, err = svc.SetValue(ctx, sess.Id, &dto.SetEditorValueRequest{Value: "<p>b</p>"})
	require.NoError(t, err)

	frames := rooms.sent(sess.Id)
	require.Len(t, frames, 1)
	assert.Equal(t, "<p>b</p>", frames[0].Value)
}

func TestEditorServicePaste(t *testing.T) {
	ctx := context.Background()
	svc := newTestEditorService(newFakeRooms())
	sess, err := svc.Create(ctx, &dto.CreateEditorSessionRequest{Value: "<p>hello world</p>"})
	require.NoError(t, err)

	node := firstNode(t, svc, sess.Id)
	res, err := svc.Paste(ctx, sess.Id, &dto.EditorPasteRequest{
		Html:      "<em>there</em>",
		Selection: &richtext.Selection{Anchor: richtext.Position{Node: node, Offset: 6}, Focus: richtext.Position{Node: node, Offset: 11}},
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>hello there</p>", res.Value)
}

func TestEditorServiceHandleMessage(t *testing.T) {
	ctx := context.Background()
	rooms := newFakeRooms()
	svc := newTestEditorService(rooms)
	sess, err := svc.Create(ctx, &dto.CreateEditorSessionRequest{Value: "<p>ab</p>"})
	require.NoError(t, err)
	node := firstNode(t, svc, sess.Id)
	caret := richtext.Caret(richtext.Position{Node: node, Offset: 2})

	assert.Nil(t, svc.HandleMessage(ctx, sess.Id, &dto.EditorMessage{Type: EditorMessageInsertText, Text: "c", Selection: &caret}))
	assert.Nil(t, svc.HandleMessage(ctx, sess.Id, &dto.EditorMessage{Type: EditorMessageDeleteBackward}))
	assert.Nil(t, svc.HandleMessage(ctx, sess.Id, &dto.EditorMessage{Type: EditorMessageSelect}))

	got, err := svc.Get(ctx, sess.Id)
	require.NoError(t, err)
	assert.Equal(t, "<p>ab</p>", got.Value)
	assert.Len(t, rooms.sent(sess.Id), 2)

	reply := svc.HandleMessage(ctx, sess.Id, &dto.EditorMessage{Type: "shout"})
	require.NotNil(t, reply)
	assert.Equal(t, EditorMessageError, reply.Type)
	assert.Contains(t, reply.Error, "unknown message type")

	reply = svc.HandleMessage(ctx, "missing", &dto.EditorMessage{Type: EditorMessageInsertText, Text: "x"})
	require.NotNil(t, reply)
	assert.Equal(t, EditorMessageError, reply.Type)
}

func TestEditorServiceInsertImages(t *testing.T) {
	ctx := context.Background()
	svc := newTestEditorService(newFakeRooms())
	sess, err := svc.Create(ctx, &dto.CreateEditorSessionRequest{Value: "<p>intro</p>"})
	require.NoError(t, err)

	files := []*multipart.FileHeader{
		fileHeader(t, "files", "cover.png", pngHeader),
		fileHeader(t, "files", "notes.txt", []byte("just text")),
	}
	res, err := svc.InsertImages(ctx, sess.Id, files)
	require.NoError(t, err)
	require.Len(t, res.Results, 2)

	byName := map[string]dto.EditorImageResult{}
	for _, r := range res.Results {
		byName[r.Name] = r
	}
	assert.Empty(t, byName["cover.png"].Error)
	assert.NotZero(t, byName["cover.png"].Node)
	assert.Equal(t, "not an image", byName["notes.txt"].Error)
	assert.Contains(t, res.Value, `src="data:image/png;base64,`)

	_, err = svc.InsertImages(ctx, sess.Id, nil)
	assert.Equal(t, http.StatusBadRequest, serverutils.StatusOf(err))
}

func TestEditorServiceClose(t *testing.T) {
	ctx := context.Background()
	rooms := newFakeRooms()
	svc := newTestEditorService(rooms)
	sess, err := svc.Create(ctx, &dto.CreateEditorSessionRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.Close(ctx, sess.Id))
	assert.Equal(t, []string{sess.Id}, rooms.closed)
	assert.Equal(t, 0, svc.registry.Count())

	err = svc.Close(ctx, sess.Id)
	assert.Equal(t, http.StatusNotFound, serverutils.StatusOf(err))
}
