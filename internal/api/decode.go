package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodePayload decodes payload into out after renaming the server's "_id"
// keys to "id" at every depth. Numeric ids become strings.
func decodePayload(payload []byte, out any) error {
	normalized, err := normalizeIDs(payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func normalizeIDs(payload []byte) ([]byte, error) {
	if !bytes.Contains(payload, []byte(`"_id"`)) {
		return payload, nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	out, err := json.Marshal(renameIDs(tree))
	if err != nil {
		return nil, fmt.Errorf("normalize payload: %w", err)
	}
	return out, nil
}

func renameIDs(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = renameIDs(child)
		}
		if raw, ok := node["_id"]; ok {
			if _, hasID := node["id"]; !hasID {
				if n, isNum := raw.(json.Number); isNum {
					raw = n.String()
				}
				node["id"] = raw
			}
			delete(node, "_id")
		}
		return node
	case []any:
		for i, child := range node {
			node[i] = renameIDs(child)
		}
		return node
	default:
		return v
	}
}
