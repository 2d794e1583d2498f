package render

import (
	"regexp"
	"strings"

	"github.com/aibee/wizard/pkg/document"
	"github.com/aibee/wizard/pkg/domain"
)

// SupplyDemandKey marks a mapping that is formatted as a supply and demand analysis.
const SupplyDemandKey = "Supply_and_Demand_Analysis"

// ictBulletPrefix is the pasted word-processor bullet ("·" followed by three no-break spaces).
const ictBulletPrefix = "·\u00a0\u00a0\u00a0"

var sectionNumbering = regexp.MustCompile(`^\d+\.\s*`)

// formatText renders a value of any shape as free text.
func (b *builder) formatText(v domain.Value) {
	switch v.Kind() {
	case domain.KindNull:
		return
	case domain.KindMapping:
		if sd, ok := v.Get(SupplyDemandKey); ok {
			b.supplyDemand(sd)
			return
		}
		for _, f := range v.Fields() {
			b.formatLines(f.Key + ": " + f.Value.Text())
		}
	case domain.KindList:
		for _, item := range v.Items() {
			b.formatText(item)
		}
	case domain.KindString, domain.KindNumber, domain.KindBool:
		b.formatLines(v.Text())
	}
}

// formatLines applies the line classifier to each non-blank line of text.
func (b *builder) formatLines(text string) {
	clean := strings.TrimSpace(stripEmphasis(text))
	for _, line := range strings.Split(clean, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch b.classify(line) {
		case LineSubheading:
			b.subheadingLine(line)
		case LineBullet:
			b.bullet(0, document.Plain(strings.TrimSpace(strings.TrimPrefix(line, "- "))))
		default:
			b.paragraph(document.Plain(line))
		}
	}
}

func (b *builder) subheadingLine(line string) {
	if !strings.Contains(line, ":") {
		b.paragraph(document.Bold(line))
		return
	}
	label, rest := splitLabel(line)
	b.labeled(label, rest)
}

// supplyDemand renders the supply and demand analysis: titled sections whose
// content may be nested mappings, lists or plain values.
func (b *builder) supplyDemand(v domain.Value) {
	b.subheading("Supply and Demand Analysis")

	if v.Kind() != domain.KindMapping {
		b.formatLines(v.Text())
		return
	}

	for _, section := range v.Fields() {
		b.subheading(b.title.String(sectionNumbering.ReplaceAllString(section.Key, "")))

		content := section.Value
		switch content.Kind() {
		case domain.KindMapping:
			for _, sub := range content.Fields() {
				label := b.humanize(sub.Key) + ": "
				switch sub.Value.Kind() {
				case domain.KindMapping:
					b.paragraph(document.Bold(label))
					for _, kv := range sub.Value.Fields() {
						b.bullet(1, document.Plain(b.humanize(kv.Key)+": "+kv.Value.Text()))
					}
				case domain.KindList:
					b.paragraph(document.Bold(label))
					for _, item := range sub.Value.Items() {
						b.bullet(1, document.Plain(item.Text()))
					}
				default:
					b.labeled(label, sub.Value.Text())
				}
			}
		case domain.KindList:
			for _, item := range content.Items() {
				b.bullet(0, document.Plain(item.Text()))
			}
		default:
			b.paragraph(document.Plain(content.Text()))
		}
	}
}

// ictRequirements renders the ICT section. Strings holding a JSON object are
// decoded first; other strings go through the line heuristic.
func (b *builder) ictRequirements(v domain.Value) {
	switch v.Kind() {
	case domain.KindNull:
		return
	case domain.KindMapping:
		b.ictCategories(v)
	case domain.KindList:
		for _, item := range v.Items() {
			b.ictRequirements(item)
		}
	case domain.KindString:
		text := stripEmphasis(v.Text())
		if parsed, err := domain.ParseJSON([]byte(text)); err == nil && parsed.IsStructured() {
			b.ictRequirements(parsed)
			return
		}
		b.ictLines(text)
	default:
		b.ictLines(v.Text())
	}
}

func (b *builder) ictCategories(v domain.Value) {
	for _, category := range v.Fields() {
		b.paragraph(document.Bold(b.humanize(category.Key) + ":"))

		details := category.Value
		switch details.Kind() {
		case domain.KindMapping:
			for _, sub := range details.Fields() {
				if sub.Value.Kind() == domain.KindMapping {
					b.paragraph(document.Bold(b.humanize(sub.Key) + ":"))
					for _, kv := range sub.Value.Fields() {
						b.bullet(1, document.Plain(b.humanize(kv.Key)+": "+kv.Value.Text()))
					}
					continue
				}
				b.bullet(0, document.Plain(b.humanize(sub.Key)+": "+sub.Value.Text()))
			}
		case domain.KindList:
			for _, item := range details.Items() {
				b.bullet(0, document.Plain(item.Text()))
			}
		default:
			b.bullet(0, document.Plain(details.Text()))
		}
	}
}

func (b *builder) ictLines(text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "- "):
			b.bullet(0, document.Plain(strings.TrimSpace(line[2:])))
		case strings.HasPrefix(line, ictBulletPrefix):
			item := strings.TrimSpace(strings.TrimPrefix(line, ictBulletPrefix))
			if b.classify(item) == LineSubheading && strings.Contains(item, ":") {
				b.subheadingLine(item)
			} else {
				b.paragraph(document.Plain(line))
			}
		case b.classify(line) == LineSubheading:
			b.subheadingLine(line)
		default:
			b.paragraph(document.Plain(line))
		}
	}
}

func replaceUnderscores(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
