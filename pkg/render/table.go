package render

import (
	"github.com/aibee/wizard/pkg/document"
	"github.com/aibee/wizard/pkg/domain"
)

// DescriptionColumn is rendered as bullet lines when its value is a list.
const DescriptionColumn = "Description"

// TotalLabel is written in the first cell of a total row.
const TotalLabel = "Total"

// table renders records (mappings) under headers. When sum names a header,
// a total row is appended if every value of that column is numeric.
func (b *builder) table(headers []string, records []domain.Value, sum string) {
	if len(headers) == 0 || len(records) == 0 {
		b.paragraph(document.Plain(NoData))
		return
	}

	t := document.Table{Headers: headers}
	for _, rec := range records {
		row := make([]document.Cell, len(headers))
		for i, h := range headers {
			val, _ := rec.Get(h)
			row[i] = cell(h, val)
		}
		t.Rows = append(t.Rows, row)
	}
	if sum != "" {
		t.Total = b.total(headers, records, sum)
	}
	b.doc.Add(t)
}

// record builds a single-row table record from answer keys, in header order.
func record(answers domain.Answers, headers, keys []string) domain.Value {
	fields := make([]domain.Field, len(headers))
	for i, h := range headers {
		fields[i] = domain.Field{Key: h, Value: lookup(answers, keys[i])}
	}
	return domain.Map(fields...)
}

func cell(header string, v domain.Value) document.Cell {
	if header == DescriptionColumn {
		if v.Kind() == domain.KindList {
			items := make([]string, 0, v.Len())
			for _, item := range v.Items() {
				items = append(items, item.Text())
			}
			return document.BulletCell(items...)
		}
		return document.TextCell(v.Text())
	}
	return document.TextCell(formatValue(v))
}

// total sums the sum column across records. It returns nil and records a
// diagnostic when the column is unknown or holds a non-numeric value.
func (b *builder) total(headers []string, records []domain.Value, sum string) []document.Cell {
	idx := -1
	for i, h := range headers {
		if h == sum {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.warn("total column %q is not a table header; total row omitted", sum)
		return nil
	}

	var total float64
	integral := true
	for i, rec := range records {
		val, _ := rec.Get(sum)
		amount, whole, ok := parseAmount(val)
		if !ok {
			b.warn("row %d: %q value %q is not numeric; total row omitted", i+1, sum, val.Text())
			return nil
		}
		total += amount
		integral = integral && whole
	}

	row := make([]document.Cell, len(headers))
	row[0] = document.TextCell(TotalLabel)
	row[idx] = document.TextCell(formatTotal(total, integral))
	return row
}

// grid renders a list of uniform records. If any field of the first record
// is a mapping, the table switches to merged headers whose sub-columns are the
// keys of that mapping.
func (b *builder) grid(records []domain.Value, sum string) {
	if len(records) == 0 {
		b.paragraph(document.Plain(NoData))
		return
	}
	first := records[0]
	if first.Kind() != domain.KindMapping {
		b.warn("grid rows are %s values, not records; rendered as text", first.Kind())
		b.formatText(domain.List(records...))
		return
	}

	merged := false
	for _, f := range first.Fields() {
		if f.Value.Kind() == domain.KindMapping {
			merged = true
			break
		}
	}
	if !merged {
		b.table(first.Keys(), records, sum)
		return
	}

	groups := make([]document.HeaderGroup, 0, first.Len())
	for _, f := range first.Fields() {
		g := document.HeaderGroup{Label: f.Key}
		if f.Value.Kind() == domain.KindMapping {
			g.Subcolumns = f.Value.Keys()
		}
		groups = append(groups, g)
	}
	b.mergedTable(groups, records)
}

func (b *builder) mergedTable(groups []document.HeaderGroup, records []domain.Value) {
	t := document.MergedHeaderTable{Groups: groups}
	width := t.Columns()

	for i, rec := range records {
		row := make([]document.Cell, 0, width)
		for _, g := range groups {
			val, _ := rec.Get(g.Label)
			if len(g.Subcolumns) == 0 {
				row = append(row, cell(g.Label, val))
				continue
			}
			if val.Kind() != domain.KindMapping {
				// Keep columns aligned: the value fills the first sub-column.
				b.warn("row %d: %q is not a mapping of %v", i+1, g.Label, g.Subcolumns)
				row = append(row, document.TextCell(formatValue(val)))
				for range g.Subcolumns[1:] {
					row = append(row, document.TextCell(""))
				}
				continue
			}
			for _, sub := range g.Subcolumns {
				sv, _ := val.Get(sub)
				row = append(row, document.TextCell(formatValue(sv)))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	b.doc.Add(t)
}
