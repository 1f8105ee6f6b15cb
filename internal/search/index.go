// Package search provides full-text keyword search over stored declarations.
package search

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/srcmeta/srcmeta/internal/storage"
)

// declDocument is the shape indexed per declaration.
type declDocument struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Language  string `json:"language"`
	FilePath  string `json:"file_path"`
	Docstring string `json:"docstring"`
	Signature string `json:"signature"`
	StartLine int    `json:"start_line"`
}

// Hit is one search result.
type Hit struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	FilePath  string  `json:"file_path"`
	StartLine int     `json:"start_line"`
	Score     float64 `json:"score"`
}

// Index is an in-memory bleve index over declarations.
type Index struct {
	index bleve.Index
}

// NewIndex builds and populates an in-memory index.
func NewIndex(decls []storage.StoredDeclaration) (*Index, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	batch := index.NewBatch()
	for i, d := range decls {
		doc := declDocument{
			Name:      d.Name,
			Kind:      d.Kind,
			Language:  d.Language,
			FilePath:  d.FilePath,
			Docstring: d.Docstring,
			Signature: d.Signature,
			StartLine: d.StartLine,
		}
		if err := batch.Index(d.FilePath+"#"+strconv.Itoa(i), doc); err != nil {
			index.Close()
			return nil, err
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index declarations: %w", err)
	}

	return &Index{index: index}, nil
}

// buildMapping indexes names, docstrings, and signatures with the standard
// analyzer; kind and language use the keyword analyzer for exact filtering.
func buildMapping() *mapping.IndexMappingImpl {
	m := bleve.NewIndexMapping()

	text := bleve.NewTextFieldMapping()
	text.Analyzer = "standard"
	text.Store = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true

	num := bleve.NewNumericFieldMapping()
	num.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", text)
	doc.AddFieldMappingsAt("docstring", text)
	doc.AddFieldMappingsAt("signature", text)
	doc.AddFieldMappingsAt("file_path", text)
	doc.AddFieldMappingsAt("kind", keyword)
	doc.AddFieldMappingsAt("language", keyword)
	doc.AddFieldMappingsAt("start_line", num)

	m.DefaultMapping = doc
	return m
}

// Search runs a bleve query string search, returning up to limit hits.
func (i *Index) Search(queryStr string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 15
	}
	query := bleve.NewQueryStringQuery(queryStr)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Fields = []string{"name", "kind", "file_path", "start_line"}

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		if v, ok := h.Fields["name"].(string); ok {
			hit.Name = v
		}
		if v, ok := h.Fields["kind"].(string); ok {
			hit.Kind = v
		}
		if v, ok := h.Fields["file_path"].(string); ok {
			hit.FilePath = v
		}
		if v, ok := h.Fields["start_line"].(float64); ok {
			hit.StartLine = int(v)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}
