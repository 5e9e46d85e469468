package serde

import (
	"encoding/json"

	"github.com/yanun0323/errors"
)

// JSON serializes messages with encoding/json.
type JSON struct{}

func (JSON) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal json payload")
	}
	return data, nil
}

func (JSON) Unmarshal(data []byte, msg any) error {
	if err := json.Unmarshal(data, msg); err != nil {
		return errors.Wrap(err, "unmarshal json payload")
	}
	return nil
}
