package parser

import (
	"bytes"
	"encoding/csv"

	"github.com/dgallion1/docgrep/internal/doctree"
)

// CSVParser handles CSV files. Every record becomes a row and every field a
// cell holding one text leaf, so a match never spans two fields.
type CSVParser struct{}

func (p *CSVParser) Parse(data []byte, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, decodeErr("csv", err)
	}

	tree := &doctree.DocTree{Title: titleOf(filename, ".csv")}
	if len(records) == 0 {
		return tree, nil
	}

	table := doctree.Container(doctree.KindTable)
	for _, record := range records {
		row := doctree.Container(doctree.KindRow)
		for _, field := range record {
			if field == "" {
				continue
			}
			row.Append(doctree.Container(doctree.KindCell, doctree.TextNode(field)))
		}
		table.Append(row)
	}
	tree.Children = []*doctree.DocNode{table}

	return tree, nil
}
