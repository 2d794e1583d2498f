/*
Package wizard is a conditional form engine that walks a user through a
multi-step proposal (the PC-1), optionally augments the answers with LLM
generated text and tables, and renders everything into a document.

# Concept

The flow is a transition table: rows grouped by step name, each guarded by a
condition on earlier answers. The first row of the current group whose
condition holds decides which questions are asked, which variables are set,
which prompts are sent to the LLM and which step comes next. The runtime is
stateless; the Engine in this package keeps sessions in a pluggable store and
serializes access to each one.

The renderer accepts the accumulated answers in whatever shape they arrived
(strings, numbers, nested JSON from the LLM) and turns them into a fixed
sequence of report sections with tables, merged headers and totals. Writers
serialize the result as .docx or markdown.

# Usage

	eng, err := wizard.New("steps.txt",
		wizard.WithPromptRunner(llm.New(llm.Config{APIKey: key})),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	opts, _ := eng.Questions(ctx, "session-123")
	fmt.Println(opts.Questions)

	adv, _, err := eng.Submit(ctx, "session-123", domain.Answers{
		"projectName": domain.String("Ring Road"),
	})
	if err != nil {
		log.Fatal(err)
	}

	if adv.Completed {
		answers, _ := eng.Export(ctx, "session-123")
		f, _ := os.Create("PC1_Report.docx")
		defer f.Close()
		eng.Write(f, wizard.FormatDOCX, answers)
	}
*/
package wizard
