package wizard_test

import (
	"context"
	"fmt"

	"github.com/aibee/wizard"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/dsl"
)

func Example() {
	b := dsl.New()
	b.Step("q1").Ask("Project name?", "projectName").Go("q2")
	b.Step("q2").After("q1").Ask("Sponsoring ministry?", "ministry").Terminal()

	loader, err := b.Build()
	if err != nil {
		panic(err)
	}
	eng, err := wizard.New("", wizard.WithLoader(loader))
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	opts, _ := eng.Questions(ctx, "demo")
	fmt.Println(opts.StepName, opts.Questions)

	adv, _, _ := eng.Submit(ctx, "demo", domain.Answers{"projectName": domain.String("Road")})
	fmt.Println(adv.NextStep)

	adv, _, _ = eng.Submit(ctx, "demo", domain.Answers{"ministry": domain.String("Planning")})
	fmt.Println(adv.Completed)
	// Output:
	// q1 [Project name?]
	// q2
	// true
}
