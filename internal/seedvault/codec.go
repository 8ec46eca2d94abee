package seedvault

import (
	"encoding/json"
	"fmt"
)

const envelopeSchema = 1

type envelopeDoc struct {
	Version int                  `json:"version"`
	Seeds   map[AccountID][]byte `json:"seeds"`
}

func encodeMap(m AccountMap) ([]byte, error) {
	doc := envelopeDoc{Version: envelopeSchema, Seeds: make(map[AccountID][]byte, len(m))}
	for id, s := range m {
		doc.Seeds[id] = s
	}
	return json.Marshal(doc)
}

func decodeMap(pt []byte) (AccountMap, error) {
	var doc envelopeDoc
	if err := json.Unmarshal(pt, &doc); err != nil {
		return nil, err
	}
	if doc.Version != envelopeSchema {
		return nil, fmt.Errorf("unsupported schema version %d", doc.Version)
	}
	m := make(AccountMap, len(doc.Seeds))
	for id, s := range doc.Seeds {
		if id == "" || len(s) == 0 {
			m.Wipe()
			return nil, fmt.Errorf("empty entry in account map")
		}
		m[id] = Seed(s)
	}
	return m, nil
}
