package store

import (
	"bytes"
	"encoding/gob"
)

// encodeEntry serializes an entry for the byte-oriented backends.
func encodeEntry(entry Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeEntry(data []byte) (Entry, error) {
	var entry Entry
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry)
	return entry, err
}
