package dto

import (
	"lms-be/pkg/richtext"
)

type CreateEditorSessionRequest struct {
	Value string `json:"value"`
}

type EditorSessionResponse struct {
	Id      string `json:"id"`
	Value   string `json:"value"`
	Version uint64 `json:"version"`
}

type SetEditorValueRequest struct {
	Value string `json:"value"`
}

type EditorCommandRequest struct {
	Command   string              `json:"command" validate:"required"`
	Language  string              `json:"language"`
	Selection *richtext.Selection `json:"selection"`
}

type EditorPasteRequest struct {
	Text      string              `json:"text"`
	Html      string              `json:"html"`
	Selection *richtext.Selection `json:"selection"`
}

type EditorImageResult struct {
	Name  string `json:"name"`
	Node  uint64 `json:"node,omitempty"`
	Error string `json:"error,omitempty"`
}

type EditorImagesResponse struct {
	EditorSessionResponse
	Results []EditorImageResult `json:"results"`
}

// EditorMessage is the websocket frame exchanged with a live editor session.
// Inbound types: command, set_value, paste, select, insert_text, delete_backward.
// Outbound types: change, error.
type EditorMessage struct {
	Type      string              `json:"type"`
	Command   string              `json:"command,omitempty"`
	Language  string              `json:"language,omitempty"`
	Value     string              `json:"value,omitempty"`
	Text      string              `json:"text,omitempty"`
	Html      string              `json:"html,omitempty"`
	Selection *richtext.Selection `json:"selection,omitempty"`
	Version   uint64              `json:"version,omitempty"`
	Error     string              `json:"error,omitempty"`
}
