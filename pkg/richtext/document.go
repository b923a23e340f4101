package richtext

import "unicode/utf8"

// NodeID identifies a block for the lifetime of a document. Ids are never reused.
// The zero value is not a valid block id.
type NodeID uint64

type BlockKind uint8

const (
	KindParagraph BlockKind = iota + 1
	KindList
	KindImage
	KindCode
	KindRaw
)

func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindList:
		return "list"
	case KindImage:
		return "image"
	case KindCode:
		return "code"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Block is one top-level node of a document.
//
// Which fields are meaningful depends on Kind:
//   - KindParagraph: Tag ("p", "div" or "" for loose inline content) and exactly one Line.
//   - KindList: one Line per list item.
//   - KindImage: Src (usually a data URI) and Alt.
//   - KindCode: Language, Code (plain source) and Highlighted (rendered markup, may be empty).
//   - KindRaw: Raw markup the editor keeps verbatim.
type Block struct {
	ID   NodeID
	Kind BlockKind

	Tag   string
	Lines []Line

	Src string
	Alt string

	Language    string
	Code        string
	Highlighted string

	Raw string
}

func (b *Block) clone() *Block {
	c := *b
	if b.Lines != nil {
		c.Lines = make([]Line, len(b.Lines))
		for i, l := range b.Lines {
			c.Lines[i] = l.clone()
		}
	}
	return &c
}

func (b *Block) isText() bool {
	return b.Kind == KindParagraph || b.Kind == KindList
}

// lineCount is the number of addressable lines in the block.
func (b *Block) lineCount() int {
	if b.isText() {
		return len(b.Lines)
	}
	return 1
}

// lineLen is the rune length of line i. Atomic blocks have length 0.
func (b *Block) lineLen(i int) int {
	switch {
	case b.isText():
		if i < 0 || i >= len(b.Lines) {
			return 0
		}
		return b.Lines[i].Len()
	case b.Kind == KindCode:
		return utf8.RuneCountInString(b.Code)
	default:
		return 0
	}
}

// Document is an ordered sequence of blocks.
type Document struct {
	blocks []*Block
	nextID NodeID
}

func NewDocument() *Document {
	return &Document{nextID: 1}
}

func (d *Document) newID() NodeID {
	id := d.nextID
	d.nextID++
	return id
}

// Len returns the number of blocks.
func (d *Document) Len() int { return len(d.blocks) }

// Blocks returns deep copies of the blocks in document order.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = *b.clone()
	}
	return out
}

// Block returns a copy of the block with the given id.
func (d *Document) Block(id NodeID) (Block, bool) {
	b, _ := d.find(id)
	if b == nil {
		return Block{}, false
	}
	return *b.clone(), true
}

func (d *Document) find(id NodeID) (*Block, int) {
	if id == 0 {
		return nil, -1
	}
	for i, b := range d.blocks {
		if b.ID == id {
			return b, i
		}
	}
	return nil, -1
}

// Clone returns a deep copy sharing no state with d.
func (d *Document) Clone() *Document {
	c := &Document{nextID: d.nextID, blocks: make([]*Block, len(d.blocks))}
	for i, b := range d.blocks {
		c.blocks[i] = b.clone()
	}
	return c
}

// Append adds b at the end of the document, assigning it a fresh id.
func (d *Document) Append(b Block) NodeID {
	nb := b.clone()
	nb.ID = d.newID()
	d.blocks = append(d.blocks, nb)
	return nb.ID
}

func (d *Document) insertAt(i int, b *Block) {
	if b.ID == 0 {
		b.ID = d.newID()
	}
	d.blocks = append(d.blocks, nil)
	copy(d.blocks[i+1:], d.blocks[i:])
	d.blocks[i] = b
}

func (d *Document) removeAt(i int) {
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
}

// Images returns the source of every image block in document order.
func (d *Document) Images() []string {
	var out []string
	for _, b := range d.blocks {
		if b.Kind == KindImage {
			out = append(out, b.Src)
		}
	}
	return out
}

// CodeBlocks returns the ids of every code block in document order.
func (d *Document) CodeBlocks() []NodeID {
	var out []NodeID
	for _, b := range d.blocks {
		if b.Kind == KindCode {
			out = append(out, b.ID)
		}
	}
	return out
}

// OutlineEntry summarises one block for storage alongside the serialized markup.
type OutlineEntry struct {
	ID       NodeID `json:"id"`
	Kind     string `json:"kind"`
	Language string `json:"language,omitempty"`
	Items    int    `json:"items,omitempty"`
	Chars    int    `json:"chars,omitempty"`
}

func (d *Document) Outline() []OutlineEntry {
	out := make([]OutlineEntry, 0, len(d.blocks))
	for _, b := range d.blocks {
		e := OutlineEntry{ID: b.ID, Kind: b.Kind.String()}
		switch b.Kind {
		case KindList:
			e.Items = len(b.Lines)
			for _, l := range b.Lines {
				e.Chars += l.Len()
			}
		case KindParagraph:
			for _, l := range b.Lines {
				e.Chars += l.Len()
			}
		case KindCode:
			e.Language = b.Language
			e.Chars = utf8.RuneCountInString(b.Code)
		}
		out = append(out, e)
	}
	return out
}
