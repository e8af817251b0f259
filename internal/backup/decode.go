package backup

import (
	"bytes"
	"encoding/json"

	"github.com/roach88/foodmap/internal/model"
)

// CurrentVersion is the payload version written by Exporter.
const CurrentVersion = 1

// Payload is a decoded backup.
type Payload struct {
	// Version is 0 for the legacy array form.
	Version int `json:"version"`

	// Settings is nil when the backup carries none.
	Settings *model.Settings `json:"settings,omitempty"`

	Stores []model.StoreRecord `json:"stores"`
}

// Decode parses raw into a Payload.
//
// Accepted shapes are a JSON array of store objects, or a JSON object whose
// "stores" member is such an array. Anything else is a *FormatError, as is a
// store element that is not an object, has a field of the wrong type, or has
// an empty name. Input that is not JSON at all is a *ParseError.
//
// Unknown fields are ignored so that backups written by newer versions still
// load.
func Decode(raw []byte) (Payload, error) {
	var top json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return Payload{}, &ParseError{Err: err}
	}

	switch firstByte(top) {
	case '[':
		stores, err := decodeStores(top)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Stores: stores}, nil

	case '{':
		return decodeVersioned(top)

	default:
		return Payload{}, formatErrorf(-1, nil, "expected an array of stores or an object with a stores array")
	}
}

func decodeVersioned(raw json.RawMessage) (Payload, error) {
	var obj struct {
		Version  json.RawMessage `json:"version"`
		Settings json.RawMessage `json:"settings"`
		Stores   json.RawMessage `json:"stores"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Payload{}, formatErrorf(-1, err, "malformed backup object")
	}

	if firstByte(obj.Stores) != '[' {
		return Payload{}, formatErrorf(-1, nil, "object has no stores array")
	}

	var p Payload
	if len(obj.Version) > 0 && !isNull(obj.Version) {
		if err := json.Unmarshal(obj.Version, &p.Version); err != nil {
			return Payload{}, formatErrorf(-1, err, "version must be an integer")
		}
	}

	if len(obj.Settings) > 0 && !isNull(obj.Settings) {
		if firstByte(obj.Settings) != '{' {
			return Payload{}, formatErrorf(-1, nil, "settings must be an object")
		}
		var s model.Settings
		if err := json.Unmarshal(obj.Settings, &s); err != nil {
			return Payload{}, formatErrorf(-1, err, "malformed settings")
		}
		p.Settings = &s
	}

	stores, err := decodeStores(obj.Stores)
	if err != nil {
		return Payload{}, err
	}
	p.Stores = stores
	return p, nil
}

func decodeStores(raw json.RawMessage) ([]model.StoreRecord, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, formatErrorf(-1, err, "malformed stores array")
	}

	stores := make([]model.StoreRecord, 0, len(elems))
	for i, elem := range elems {
		if firstByte(elem) != '{' {
			return nil, formatErrorf(i, nil, "store must be an object")
		}
		var r model.StoreRecord
		if err := json.Unmarshal(elem, &r); err != nil {
			return nil, formatErrorf(i, err, "malformed store")
		}
		if err := r.Validate(); err != nil {
			return nil, formatErrorf(i, err, "unusable store")
		}
		stores = append(stores, r)
	}
	return stores, nil
}

func firstByte(raw []byte) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
