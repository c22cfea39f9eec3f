package tui

import (
	"context"

	"github.com/hylla/actionboard/internal/app"
)

type CardFieldConfig struct {
	ShowDueDate      bool
	ShowConfidence   bool
	ShowUnrecognized bool
}

type Option func(*Model)

func DefaultCardFieldConfig() CardFieldConfig {
	return CardFieldConfig{
		ShowDueDate:      true,
		ShowConfidence:   true,
		ShowUnrecognized: true,
	}
}

func WithCardFieldConfig(cfg CardFieldConfig) Option {
	return func(m *Model) {
		m.cardFields = cfg
	}
}

// WithStartView selects the view shown first; the board view fetches on start.
func WithStartView(v View) Option {
	return func(m *Model) {
		switch v {
		case ViewUpload, ViewBoard:
			m.view = v
		}
	}
}

func WithConfirmDelete(confirm bool) Option {
	return func(m *Model) {
		m.confirmDelete = confirm
	}
}

func WithUploadOptions(opts ...app.UploadOption) Option {
	return func(m *Model) {
		m.uploadOpts = append(m.uploadOpts, opts...)
	}
}

// WithStartDir sets the directory the file browser opens in.
func WithStartDir(dir string) Option {
	return func(m *Model) {
		if dir != "" {
			m.startDir = dir
		}
	}
}

// WithContext sets the context backend requests run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithClipboard overrides the summary copy sink.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}
