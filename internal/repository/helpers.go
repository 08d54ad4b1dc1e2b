package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// normalizeID moves OxiDB's numeric "_id" into the "id" field models use.
func normalizeID(doc map[string]any) {
	id, ok := doc["_id"]
	if !ok {
		return
	}
	delete(doc, "_id")
	if n, ok := toInt64(id); ok {
		doc["id"] = n
	}
}

// extractID gets the inserted document ID from an OxiDB insert response.
func extractID(result map[string]any) (int64, error) {
	if n, ok := toInt64(result["id"]); ok {
		return n, nil
	}
	return 0, fmt.Errorf("insert response has no id: %v", result)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// toDoc converts a model into a document without its id.
func toDoc(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	delete(doc, "id")
	delete(doc, "_id")
	return doc, nil
}

// fromDoc decodes a stored document into a model.
func fromDoc(doc map[string]any, out any) error {
	normalizeID(doc)
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func statusQuery(query map[string]any, status string) map[string]any {
	if status != "" {
		query["status"] = status
	}
	return query
}
