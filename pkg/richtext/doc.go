// Package richtext is the document model behind the course content editor.
//
// A Document is an ordered list of typed blocks (paragraphs, unordered lists,
// images, code blocks and raw markup) parsed from and serialized back to the
// markup stored with course content. An Editor wraps a Document with a logical
// selection, toolbar commands, plain-text paste, concurrent image embedding and
// syntax highlighting, and reports every user-driven change to its owner.
package richtext
