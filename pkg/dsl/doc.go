/*
Package dsl builds transition tables in Go instead of a steps file.

Rows are added in evaluation order. A step with several guarded candidates
is written as several rows with the same name:

	b := dsl.New()

	b.Step("q1").
		Ask("Project name?", "projectName").
		Ask("Is it a provincial project?", "isProvincial").
		Go("q2")

	b.Step("q2").After("q1").When("isProvincial").
		Ask("Which province?", "province").
		Set("sector", "Provincial").
		Go("q3")

	b.Step("q2").After("q1").When("!isProvincial").
		Ask("Which ministry?", "federalMinistry").
		Set("sector", "Federal").
		Go("q3")

	b.Step("q3").
		Prompt("Write the objectives of ^projectName", "Objectives").
		Terminal()

	loader, err := b.Build()
	// ... pass loader to wizard.New("", wizard.WithLoader(loader))
*/
package dsl
