package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/aibee/wizard/pkg/document"
	"github.com/aibee/wizard/pkg/domain"
)

// DownloadPrefix marks a generated answer whose remainder is a JSON document.
const DownloadPrefix = "Download\n"

// AmountColumn is the summable column of the maintenance cost tables.
const AmountColumn = "Amount (Rs. in million)"

// Certification is the fixed statement of the last section.
const Certification = "Certified that the project proposal has been prepared..."

// BenefitHeaders are the columns of the project components table.
var BenefitHeaders = []string{
	"S.No.", "Input", "Component", "Units",
	"Year 1 Amount", "Year 1 Division",
	"Year 2 Amount", "Year 2 Division",
	"Year 3 Amount", "Year 3 Division",
	"Baseline Indicator", "Post Completion Targets",
	"Key Benefits",
}

// labelKey pairs a display label with its answer key.
type labelKey struct {
	label string
	key   string
}

type section struct {
	title  string
	render func(b *builder, answers domain.Answers)
}

var sections = []section{
	{"1. Project Overview", renderOverview},
	{"2. Agency Information", renderAgency},
	{"3. Project Timeline & Budget", renderTimeline},
	{"4. Project Details", labeledText(
		labelKey{"Scope", "scope"},
		labelKey{"Location", "location"},
		labelKey{"Feasibility Study Completed", "feasibilityStudy"},
		labelKey{"Design Finalized", "designFinalized"},
		labelKey{"Technology", "technology"},
		labelKey{"Capacity", "capacity"},
		labelKey{"Phases", "phases"},
	)},
	{"5. Risks, Deliverables & Stakeholders", labeledText(
		labelKey{"Risks", "risks"},
		labelKey{"Deliverables", "deliverables"},
		labelKey{"Stakeholders", "stakeholders"},
	)},
	{"6. Monitoring & Sustainability", labeledText(
		labelKey{"Monitoring Plan", "monitoringPlan"},
		labelKey{"Sustainability Measures", "sustainabilityMeasures"},
	)},
	{"7. Objectives", freeText("Objectives")},
	{"8. ICT Requirements", renderICT},
	{"9. Supply and Demand Analysis", renderSupplyDemand},
	{"10. Capital Cost Estimates", renderCapitalCost},
	{"11. Maintenance Costs", renderMaintenance},
	{"12. Benefits", renderBenefits},
	{"13. Financial Plan Table", renderFinancialPlan},
	{"14. Management Structure and Manpower", freeText("managementStructure")},
	{"15. Additional Projects/Decisions", freeText("additionalProjects")},
	{"16. Certification", renderCertification},
}

// lookup returns the answer for key, or the Missing placeholder when it is absent or null.
func lookup(answers domain.Answers, key string) domain.Value {
	v, ok := answers.Lookup(key)
	if !ok || v.IsNull() {
		return domain.String(Missing)
	}
	return v
}

// path walks nested mappings, returning Null when any step is missing.
func path(v domain.Value, keys ...string) domain.Value {
	for _, k := range keys {
		next, ok := v.Get(k)
		if !ok {
			return domain.Null()
		}
		v = next
	}
	return v
}

// unwrapDownload decodes a "Download\n"-prefixed JSON answer. Undecodable text
// is kept as is and reported.
func (b *builder) unwrapDownload(v domain.Value) domain.Value {
	s, ok := v.Str()
	if !ok || !strings.HasPrefix(s, DownloadPrefix) {
		return v
	}
	parsed, err := domain.ParseJSON([]byte(strings.Replace(s, DownloadPrefix, "", 1)))
	if err != nil {
		b.warn("download payload is not valid JSON: %v", err)
		return v
	}
	return parsed
}

func renderOverview(b *builder, answers domain.Answers) {
	for _, lk := range []labelKey{
		{"Project Name", "projectName"},
		{"District", "districtName"},
		{"Sector", "sector"},
	} {
		b.paragraph(document.Bold(lk.label+": "), document.Plain(lookup(answers, lk.key).Text()))
	}
}

func renderAgency(b *builder, answers domain.Answers) {
	agencies := []string{"Sponsoring Agency", "Operating Agency", "Executing Agency", "Maintenance Agency"}
	b.table(agencies, []domain.Value{
		record(answers, agencies, []string{"sponsAgency", "opAgency", "exeAgency", "maintAgency"}),
	}, "")

	ministry := []string{"Is Provincial", "Federal Ministry"}
	b.table(ministry, []domain.Value{
		record(answers, ministry, []string{"isProvincial", "federalMinistry"}),
	}, "")
}

func renderTimeline(b *builder, answers domain.Answers) {
	headers := []string{"Budget", "Duration (months)", "Start Date", "End Date"}
	b.table(headers, []domain.Value{
		record(answers, headers, []string{"budget", "duration", "startDate", "endDate"}),
	}, "")
}

// labeledText renders each answer as "Label: value" through the free-text formatter.
func labeledText(pairs ...labelKey) func(*builder, domain.Answers) {
	return func(b *builder, answers domain.Answers) {
		for _, lk := range pairs {
			b.formatLines(lk.label + ": " + lookup(answers, lk.key).Text())
		}
	}
}

func freeText(key string) func(*builder, domain.Answers) {
	return func(b *builder, answers domain.Answers) {
		b.formatText(lookup(answers, key))
	}
}

func renderICT(b *builder, answers domain.Answers) {
	b.ictRequirements(lookup(answers, "ICT-Reqs"))
}

func renderSupplyDemand(b *builder, answers domain.Answers) {
	v, ok := answers.Lookup("Supply and Demand")
	if !ok {
		v = domain.Map()
	}
	b.supplyDemand(b.unwrapDownload(v))
}

func renderCapitalCost(b *builder, answers domain.Answers) {
	v, _ := answers.Lookup("capitalCostEstimates")
	data := b.unwrapDownload(v)

	costs, ok := data.Get("capitalCost")
	if !ok {
		return
	}
	for _, cost := range costs.Items() {
		if name := path(cost, "name").Text(); name != "" {
			b.subheading(name)
		}
		b.formatText(path(cost, "description"))
		if rows := path(cost, "data"); rows.Len() > 0 {
			b.grid(rows.Items(), "")
		}
	}
}

func renderMaintenance(b *builder, answers domain.Answers) {
	v, _ := answers.Lookup("maintenanceCosts")
	data := b.unwrapDownload(v)
	headers := []string{"Year", AmountColumn}

	if plan := path(data, "financialPlan"); plan.Len() > 0 {
		b.subheading("Financial Plan:")
		var rows []domain.Value
		sum := AmountColumn
		for _, item := range plan.Items() {
			for _, f := range item.Fields() {
				if !strings.Contains(f.Key, "Year") && !strings.Contains(f.Key, "Total Cost") {
					continue
				}
				if strings.Contains(f.Key, "Total") {
					// The plan already carries its own total.
					sum = ""
				}
				rows = append(rows, domain.Map(
					domain.Field{Key: "Year", Value: domain.String(f.Key)},
					domain.Field{Key: AmountColumn, Value: f.Value},
				))
			}
		}
		if len(rows) > 0 {
			b.table(headers, rows, sum)
		}
		return
	}

	if ops := path(data, "operations"); ops.Len() > 0 {
		b.subheading("Operations Costs:")
		descriptions := path(ops, "description").Items()
		amounts := path(ops, "Amount").Items()
		n := min(len(descriptions), len(amounts))
		rows := make([]domain.Value, 0, n)
		for i := 0; i < n; i++ {
			rows = append(rows, domain.Map(
				domain.Field{Key: DescriptionColumn, Value: descriptions[i]},
				domain.Field{Key: AmountColumn, Value: amounts[i]},
			))
		}
		if len(rows) > 0 {
			b.table([]string{DescriptionColumn, AmountColumn}, rows, AmountColumn)
		}
	}
}

func renderBenefits(b *builder, answers domain.Answers) {
	v, _ := answers.Lookup("benefits")
	data := b.unwrapDownload(v)

	components, ok := data.Get("project_components")
	if !ok {
		return
	}
	b.subheading("Project Components:")

	rows := make([]domain.Value, 0, components.Len())
	for _, item := range components.Items() {
		values := []domain.Value{
			path(item, "serial_number"),
			path(item, "input"),
			path(item, "outcome", "component_name"),
			path(item, "outcome", "units"),
			path(item, "year_wise_phasing", "year_1", "amount"),
			path(item, "year_wise_phasing", "year_1", "division_of_total_items"),
			path(item, "year_wise_phasing", "year_2", "amount"),
			path(item, "year_wise_phasing", "year_2", "division_of_total_items"),
			path(item, "year_wise_phasing", "year_3", "amount"),
			path(item, "year_wise_phasing", "year_3", "division_of_total_items"),
			path(item, "outcome_metrics", "baseline_indicator"),
			path(item, "targeted_impact", "post_completion_targets"),
			path(item, "impact_details", "key_benefits"),
		}
		fields := make([]domain.Field, len(BenefitHeaders))
		for i, h := range BenefitHeaders {
			fields[i] = domain.Field{Key: h, Value: values[i]}
		}
		rows = append(rows, domain.Map(fields...))
	}
	b.table(BenefitHeaders, rows, "")
}

func renderFinancialPlan(b *builder, answers domain.Answers) {
	v, ok := answers.Lookup("financialPlanTable")
	if !ok {
		v = domain.Map()
	}

	switch v.Kind() {
	case domain.KindMapping:
		if plan := path(v, "financialPlan"); plan.Kind() == domain.KindList && plan.Len() > 0 {
			b.grid(plan.Items(), "")
			return
		}
		b.formatLines(indentJSON(v))
	default:
		b.formatText(v)
	}
}

func renderCertification(b *builder, answers domain.Answers) {
	b.formatLines(Certification)
	for _, lk := range []labelKey{
		{"Prepared by", "prepared_by"},
		{"Checked by", "checked_by"},
		{"Approved by", "approved_by"},
	} {
		b.formatLines(lk.label + ": " + lookup(answers, lk.key).Text())
	}
}

func indentJSON(v domain.Value) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(v.JSON()), "", "  "); err != nil {
		return v.JSON()
	}
	return buf.String()
}
