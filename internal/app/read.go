package app

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
)

var ErrEmptyBody = errors.New("no reader content error")

// Read drains and closes reader.
func Read(reader io.ReadCloser) ([]byte, error) {
	defer func() {
		if err := reader.Close(); err != nil {
			slog.Error("Error occured", "err", err)
		}
	}()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	} else if len(content) == 0 {
		return nil, ErrEmptyBody
	}

	return content, nil
}

// ReadJSON decodes content into a new T. A JSON null is rejected.
func ReadJSON[T any](content []byte) (*T, error) {
	var t *T
	err := json.Unmarshal(content, &t)

	if err != nil {
		return nil, err
	} else if t == nil {
		return nil, errors.New("null JSON document")
	}

	return t, nil
}
