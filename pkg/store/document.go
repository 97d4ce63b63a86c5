package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// Document is one record of a collection together with its storage key.
type Document struct {
	Key string
	Raw json.RawMessage
}

// decodeCollection accepts null, an object keyed by storage key, or an
// array whose index is the key. Object keys come back sorted.
func decodeCollection(body []byte) ([]Document, error) {
	if len(body) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: collection body is not JSON", ErrDecode)
	}

	result := gjson.ParseBytes(body)
	var docs []Document
	switch {
	case result.Type == gjson.Null:
		return nil, nil
	case result.IsObject():
		result.ForEach(func(key, value gjson.Result) bool {
			if value.Type != gjson.Null {
				docs = append(docs, Document{Key: key.String(), Raw: json.RawMessage(value.Raw)})
			}
			return true
		})
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	case result.IsArray():
		for i, value := range result.Array() {
			if value.Type == gjson.Null {
				continue
			}
			docs = append(docs, Document{Key: strconv.Itoa(i), Raw: json.RawMessage(value.Raw)})
		}
	default:
		return nil, fmt.Errorf("%w: unexpected collection body %.40q", ErrDecode, result.Raw)
	}
	return docs, nil
}
