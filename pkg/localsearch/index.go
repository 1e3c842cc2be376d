// Package localsearch provides a self-hosted search backend over a bleve
// index, for documentation sites that run without a hosted search service.
// It implements the same Backend interface and response shape as the hosted
// client: echoed query, 0-based pages, nbHits/nbPages, and <mark> highlight
// markers produced by bleve's HTML fragment formatter.
package localsearch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/docpane/docpane/pkg/log"
)

// Record is one indexable documentation section, the unit the site
// exporter emits as JSON Lines. Field names double as bleve field names.
type Record struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`

	// Heading levels, page title down to the deepest subheading.
	Lvl0 string `json:"lvl0,omitempty"`
	Lvl1 string `json:"lvl1,omitempty"`
	Lvl2 string `json:"lvl2,omitempty"`
	Lvl3 string `json:"lvl3,omitempty"`
	Lvl4 string `json:"lvl4,omitempty"`
	Lvl5 string `json:"lvl5,omitempty"`
	Lvl6 string `json:"lvl6,omitempty"`

	// Tags carry the facet values: "default", "language-<locale>" and
	// "docs-<group>-<version>".
	Tags []string `json:"tags,omitempty"`
}

func (r Record) docID() string {
	if r.ID != "" {
		return r.ID
	}
	return r.URL
}

// Index wraps a bleve index behind the docsearch.Backend interface.
type Index struct {
	idx    bleve.Index
	logger *log.Logger
}

// indexMapping builds the document mapping. Tags are indexed verbatim so
// facet refinements match exact values rather than analyzed terms.
func indexMapping() *mapping.IndexMappingImpl {
	tagField := bleve.NewTextFieldMapping()
	tagField.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("tags", tagField)

	mapping := bleve.NewIndexMapping()
	mapping.DefaultMapping = doc
	return mapping
}

// Open opens an existing index at path.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	return &Index{idx: idx, logger: log.ForService("index")}, nil
}

// OpenMemory creates an in-memory index, used by tests and previews.
func OpenMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating in-memory index: %w", err)
	}
	return &Index{idx: idx, logger: log.ForService("index")}, nil
}

// Build creates a fresh index at path from the given records. An existing
// index at that path is an error; callers remove or version old indexes.
func Build(path string, records []Record) (*Index, error) {
	idx, err := bleve.New(path, indexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index %s: %w", path, err)
	}

	ix := &Index{idx: idx, logger: log.ForService("index")}
	if err := ix.Add(records); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return ix, nil
}

// Add indexes records in batches.
func (ix *Index) Add(records []Record) error {
	batch := ix.idx.NewBatch()
	for i, rec := range records {
		if rec.URL == "" {
			return fmt.Errorf("record %d has no url", i)
		}
		if err := batch.Index(rec.docID(), rec); err != nil {
			return fmt.Errorf("adding record %s to batch: %w", rec.docID(), err)
		}

		// Flush periodically so huge exports do not hold one giant batch.
		if i%100 == 0 && i > 0 {
			if err := ix.idx.Batch(batch); err != nil {
				return fmt.Errorf("indexing batch: %w", err)
			}
			batch = ix.idx.NewBatch()
		}
	}
	if err := ix.idx.Batch(batch); err != nil {
		return fmt.Errorf("indexing batch: %w", err)
	}

	count, _ := ix.idx.DocCount()
	ix.logger.Infof("indexed %d records (%d total)", len(records), count)
	return nil
}

// DocCount returns the number of indexed records.
func (ix *Index) DocCount() (uint64, error) {
	return ix.idx.DocCount()
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	return ix.idx.Close()
}

// ReadRecords decodes a JSON Lines export. Blank lines are skipped;
// malformed lines abort with the line number.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("parsing record on line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	return records, nil
}
