package richtext

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotImage = errors.New("file is not an image")
	ErrDetached = errors.New("editor is closed")
)

// MaxImageSize bounds a single decoded image file.
const MaxImageSize = 10 << 20

// ImageFile is one file of a multi-file image selection.
type ImageFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// ImageFromBytes wraps in-memory content as an ImageFile.
func ImageFromBytes(name string, data []byte) ImageFile {
	return ImageFile{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// ImageResult reports the outcome of one file. ID is the appended block, zero on failure.
type ImageResult struct {
	Name string
	ID   NodeID
	Err  error
}

// ImageBatch tracks the decodes started by one InsertImages call.
type ImageBatch struct {
	done    chan struct{}
	mu      sync.Mutex
	results []ImageResult
}

// Wait blocks until every file of the batch has completed and returns the
// results in completion order.
func (b *ImageBatch) Wait() []ImageResult {
	<-b.done
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ImageResult(nil), b.results...)
}

func (b *ImageBatch) add(r ImageResult) {
	b.mu.Lock()
	b.results = append(b.results, r)
	b.mu.Unlock()
}

// InsertImages decodes every file to a data URI concurrently. Each successful
// decode independently appends an image block at the end of the document and
// emits, so block order follows completion order. A failing file is skipped
// without affecting its siblings. Decodes run to completion once started;
// ctx only stops files that have not started yet.
func (e *Editor) InsertImages(ctx context.Context, ev Event, files []ImageFile) *ImageBatch {
	preventDefault(ev)
	e.Focus()

	batch := &ImageBatch{done: make(chan struct{})}
	g := &errgroup.Group{}
	g.SetLimit(e.decodeLimit)

	go func() {
		defer close(batch.done)
		for _, f := range files {
			f := f
			if err := ctx.Err(); err != nil {
				batch.add(ImageResult{Name: f.Name, Err: err})
				continue
			}
			g.Go(func() error {
				batch.add(e.insertImage(f))
				return nil
			})
		}
		_ = g.Wait()
	}()
	return batch
}

func (e *Editor) insertImage(f ImageFile) ImageResult {
	res := ImageResult{Name: f.Name}
	uri, err := decodeDataURI(f)
	if err != nil {
		e.log.Warn("image skipped", zap.String("file", f.Name), zap.Error(err))
		res.Err = err
		return res
	}

	applied := e.mutate(func() bool {
		b := &Block{Kind: KindImage, Src: uri, Alt: f.Name}
		e.preserving(func() func(Position) Position {
			e.doc.insertAt(len(e.doc.blocks), b)
			return nil
		})
		res.ID = b.ID
		return true
	})
	if !applied {
		res.Err = ErrDetached
	}
	return res
}

func decodeDataURI(f ImageFile) (string, error) {
	if f.Open == nil {
		return "", fmt.Errorf("%s: no content", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("%s: exceeds %d bytes", f.Name, MaxImageSize)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%s: %w (%s)", f.Name, ErrNotImage, mt.String())
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// IsDataURI reports whether src is a base64 data URI.
func IsDataURI(src string) bool {
	return strings.HasPrefix(src, "data:") && strings.Contains(src, ";base64,")
}
