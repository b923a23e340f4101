package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"

	"lms-be/internal/config"
	"lms-be/internal/dto"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/repository/memory"
	"lms-be/pkg/richtext"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EditorMessageChange         = "change"
	EditorMessageError          = "error"
	EditorMessageCommand        = "command"
	EditorMessageSetValue       = "set_value"
	EditorMessagePaste          = "paste"
	EditorMessageSelect         = "select"
	EditorMessageInsertText     = "insert_text"
	EditorMessageDeleteBackward = "delete_backward"
)

// RoomPublisher pushes frames to the watchers of one editor session.
type RoomPublisher interface {
	Publish(room string, data []byte)
	CloseRoom(room string)
}

type IEditorService interface {
	Create(ctx context.Context, req *dto.CreateEditorSessionRequest) (*dto.EditorSessionResponse, error)
	Get(ctx context.Context, id string) (*dto.EditorSessionResponse, error)
	SetValue(ctx context.Context, id string, req *dto.SetEditorValueRequest) (*dto.EditorSessionResponse, error)
	Command(ctx context.Context, id string, req *dto.EditorCommandRequest) (*dto.EditorSessionResponse, error)
	Paste(ctx context.Context, id string, req *dto.EditorPasteRequest) (*dto.EditorSessionResponse, error)
	InsertImages(ctx context.Context, id string, files []*multipart.FileHeader) (*dto.EditorImagesResponse, error)
	Close(ctx context.Context, id string) error
	// HandleMessage applies one inbound websocket frame. The returned frame,
	// if any, goes back to the sender only.
	HandleMessage(ctx context.Context, id string, msg *dto.EditorMessage) *dto.EditorMessage
}

type editorService struct {
	registry    *memory.EditorRegistry
	rooms       RoomPublisher
	highlighter richtext.Highlighter
	cfg         config.EditorConfig
	log         *zap.Logger
	logger      logger.ILogger
}

func NewEditorService(
	registry *memory.EditorRegistry,
	rooms RoomPublisher,
	highlighter richtext.Highlighter,
	cfg config.EditorConfig,
	log logger.ILogger,
	editorLog *zap.Logger,
) IEditorService {
	if editorLog == nil {
		editorLog = zap.NewNop()
	}
	return &editorService{
		registry:    registry,
		rooms:       rooms,
		highlighter: highlighter,
		cfg:         cfg,
		log:         editorLog,
		logger:      log,
	}
}

func (s *editorService) Create(ctx context.Context, req *dto.CreateEditorSessionRequest) (*dto.EditorSessionResponse, error) {
	id := uuid.NewString()
	e := richtext.New(req.Value,
		richtext.WithLogger(s.log.With(zap.String("session", id))),
		richtext.WithHighlighter(s.highlighter),
		richtext.WithDefaultLanguage(s.cfg.DefaultLanguage),
	)
	e.SetOnChange(func(value string, version uint64) {
		s.broadcast(id, value, version)
	})
	s.registry.Put(id, e)

	s.logger.Info("EDITOR", "Session opened", map[string]interface{}{"session_id": id})
	return snapshot(id, e), nil
}

func (s *editorService) editor(id string) (*richtext.Editor, error) {
	e, ok := s.registry.Get(id)
	if !ok || e.Closed() {
		return nil, serverutils.ErrNotFound("editor session not found")
	}
	return e, nil
}

func (s *editorService) Get(ctx context.Context, id string) (*dto.EditorSessionResponse, error) {
	e, err := s.editor(id)
	if err != nil {
		return nil, err
	}
	return snapshot(id, e), nil
}

// SetValue is an external overwrite: the editor does not emit for it, so
// watchers are told here.
func (s *editorService) SetValue(ctx context.Context, id string, req *dto.SetEditorValueRequest) (*dto.EditorSessionResponse, error) {
	e, err := s.editor(id)
	if err != nil {
		return nil, err
	}
	before := e.Version()
	e.SetValue(req.Value)
	res := snapshot(id, e)
	if res.Version != before {
		s.broadcast(id, res.Value, res.Version)
	}
	return res, nil
}

func (s *editorService) Command(ctx context.Context, id string, req *dto.EditorCommandRequest) (*dto.EditorSessionResponse, error) {
	e, err := s.editor(id)
	if err != nil {
		return nil, err
	}
	if err := s.exec(e, req.Command, req.Language, req.Selection); err != nil {
		return nil, err
	}
	return snapshot(id, e), nil
}

func (s *editorService) exec(e *richtext.Editor, name, lang string, sel *richtext.Selection) error {
	if err := selectIfGiven(e, sel); err != nil {
		return err
	}
	cmd, err := richtext.ParseCommand(name)
	if err != nil {
		return serverutils.ErrBadRequest(err.Error())
	}
	ev := &richtext.Action{}
	if cmd == richtext.CommandCodeBlock && lang != "" {
		e.InsertCodeBlockLang(ev, lang)
		return nil
	}
	return e.Exec(ev, cmd)
}

func selectIfGiven(e *richtext.Editor, sel *richtext.Selection) error {
	if sel == nil {
		return nil
	}
	if !e.Select(*sel) {
		return serverutils.ErrBadRequest("selection does not match the document")
	}
	return nil
}

func (s *editorService) Paste(ctx context.Context, id string, req *dto.EditorPasteRequest) (*dto.EditorSessionResponse, error) {
	e, err := s.editor(id)
	if err != nil {
		return nil, err
	}
	if err := selectIfGiven(e, req.Selection); err != nil {
		return nil, err
	}
	e.Paste(&richtext.Action{}, richtext.ClipboardData{Text: req.Text, HTML: req.Html})
	return snapshot(id, e), nil
}

func (s *editorService) InsertImages(ctx context.Context, id string, files []*multipart.FileHeader) (*dto.EditorImagesResponse, error) {
	e, err := s.editor(id)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, serverutils.ErrBadRequest("no files selected")
	}

	images := make([]richtext.ImageFile, 0, len(files))
	for _, fh := range files {
		fh := fh
		images = append(images, richtext.ImageFile{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	results := e.InsertImages(ctx, &richtext.Action{}, images).Wait()

	res := &dto.EditorImagesResponse{
		EditorSessionResponse: *snapshot(id, e),
		Results:               make([]dto.EditorImageResult, 0, len(results)),
	}
	for _, r := range results {
		item := dto.EditorImageResult{Name: r.Name, Node: uint64(r.ID)}
		if r.Err != nil {
			item.Error = imageErrorMessage(r.Err)
		}
		res.Results = append(res.Results, item)
	}
	return res, nil
}

func imageErrorMessage(err error) string {
	switch {
	case errors.Is(err, richtext.ErrNotImage):
		return "not an image"
	case errors.Is(err, richtext.ErrDetached):
		return "editor closed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "unreadable file"
}

func (s *editorService) Close(ctx context.Context, id string) error {
	e, err := s.editor(id)
	if err != nil {
		return err
	}
	e.Close()
	s.registry.Delete(id)
	if s.rooms != nil {
		s.rooms.CloseRoom(id)
	}
	s.logger.Info("EDITOR", "Session closed", map[string]interface{}{"session_id": id})
	return nil
}

func (s *editorService) HandleMessage(ctx context.Context, id string, msg *dto.EditorMessage) *dto.EditorMessage {
	e, err := s.editor(id)
	if err != nil {
		return errorMessage(err)
	}

	switch msg.Type {
	case EditorMessageCommand:
		err = s.exec(e, msg.Command, msg.Language, msg.Selection)
	case EditorMessageSetValue:
		_, err = s.SetValue(ctx, id, &dto.SetEditorValueRequest{Value: msg.Value})
	case EditorMessagePaste:
		if err = selectIfGiven(e, msg.Selection); err == nil {
			e.Paste(&richtext.Action{}, richtext.ClipboardData{Text: msg.Text, HTML: msg.Html})
		}
	case EditorMessageSelect:
		if msg.Selection == nil {
			e.ClearSelection()
		} else {
			err = selectIfGiven(e, msg.Selection)
		}
	case EditorMessageInsertText:
		if err = selectIfGiven(e, msg.Selection); err == nil {
			e.InsertText(msg.Text)
		}
	case EditorMessageDeleteBackward:
		if err = selectIfGiven(e, msg.Selection); err == nil {
			e.DeleteBackward()
		}
	default:
		err = serverutils.ErrBadRequest("unknown message type: " + msg.Type)
	}

	if err != nil {
		return errorMessage(err)
	}
	return nil
}

func errorMessage(err error) *dto.EditorMessage {
	return &dto.EditorMessage{Type: EditorMessageError, Error: err.Error()}
}

func (s *editorService) broadcast(id, value string, version uint64) {
	if s.rooms == nil {
		return
	}
	data, err := json.Marshal(dto.EditorMessage{Type: EditorMessageChange, Value: value, Version: version})
	if err != nil {
		return
	}
	s.rooms.Publish(id, data)
}

func snapshot(id string, e *richtext.Editor) *dto.EditorSessionResponse {
	return &dto.EditorSessionResponse{Id: id, Value: e.Value(), Version: e.Version()}
}
