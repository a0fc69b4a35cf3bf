package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument is returned when the input is not valid JSON.
	ErrMalformedDocument = errors.New("malformed schema document")

	// ErrShapeMismatch is returned when valid JSON lacks required schema structure.
	ErrShapeMismatch = errors.New("schema shape mismatch")
)

// Wire types carry the serialized property names. Pointers distinguish an
// absent property from an empty one.
type wireSchema struct {
	Database *wireDatabase `json:"database"`
}

type wireDatabase struct {
	Version  *int         `json:"version"`
	Entities []wireEntity `json:"entities"`
	Views    []wireView   `json:"views"`
}

type wireEntity struct {
	TableName *string     `json:"tableName"`
	CreateSQL *string     `json:"createSql"`
	Indices   []wireIndex `json:"indices"`
}

type wireIndex struct {
	Name      *string `json:"name"`
	CreateSQL *string `json:"createSql"`
}

type wireView struct {
	ViewName  *string `json:"viewName"`
	CreateSQL *string `json:"createSql"`
}

// Unmarshal parses a JSON schema document into a Schema.
// Unrecognized properties are ignored.
func Unmarshal(data []byte) (*Schema, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedDocument)
	}

	var doc wireSchema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if doc.Database == nil {
		return nil, fmt.Errorf("%w: missing database", ErrShapeMismatch)
	}

	return doc.toModel()
}

func (w *wireSchema) toModel() (*Schema, error) {
	db := Database{
		Version:  w.Database.Version,
		Entities: make([]Entity, 0, len(w.Database.Entities)),
		Views:    make([]View, 0, len(w.Database.Views)),
	}

	for i, we := range w.Database.Entities {
		if we.TableName == nil {
			return nil, fmt.Errorf("%w: entities[%d]: missing tableName", ErrShapeMismatch, i)
		}
		if we.CreateSQL == nil {
			return nil, fmt.Errorf("%w: entity %s: missing createSql", ErrShapeMismatch, *we.TableName)
		}

		entity := Entity{
			Name:    *we.TableName,
			DDL:     *we.CreateSQL,
			Indices: make([]Index, 0, len(we.Indices)),
		}
		for j, wi := range we.Indices {
			if wi.CreateSQL == nil {
				return nil, fmt.Errorf("%w: entity %s: indices[%d]: missing createSql", ErrShapeMismatch, entity.Name, j)
			}
			idx := Index{DDL: *wi.CreateSQL}
			if wi.Name != nil {
				idx.Name = *wi.Name
			}
			entity.Indices = append(entity.Indices, idx)
		}
		db.Entities = append(db.Entities, entity)
	}

	for i, wv := range w.Database.Views {
		if wv.ViewName == nil {
			return nil, fmt.Errorf("%w: views[%d]: missing viewName", ErrShapeMismatch, i)
		}
		if wv.CreateSQL == nil {
			return nil, fmt.Errorf("%w: view %s: missing createSql", ErrShapeMismatch, *wv.ViewName)
		}
		db.Views = append(db.Views, View{Name: *wv.ViewName, DDL: *wv.CreateSQL})
	}

	return &Schema{Database: db}, nil
}
