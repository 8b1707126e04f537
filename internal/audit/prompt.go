package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

var verdictSchema = func() string {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema, err := json.MarshalIndent(reflector.Reflect(&Verdict{}), "", "  ")
	if err != nil {
		panic(fmt.Sprintf("reflecting verdict schema: %v", err))
	}
	return string(schema)
}()

func buildSystemPrompt() string {
	return fmt.Sprintf(`You are reviewing structured rows extracted from construction site diary spreadsheets.

Each row was pulled from the labour table of a supervisor's daily report. Your job is to judge whether the extraction looks faithful: a plausible worker or group label, hours in a sane range, and comment text that reads like diary content rather than spreadsheet debris (headers, totals, stray cell fragments).

Respond with PASS when the row looks like a faithful extraction, FLAG when anything looks wrong, and explain briefly in notes.

Return valid JSON matching this schema:
%s`, verdictSchema)
}

func buildUserPrompt(s Sample) string {
	hours := "(none)"
	if s.Hours != nil {
		hours = fmt.Sprintf("%g", *s.Hours)
	}
	fields := []string{
		"diary_date: " + s.DiaryDate,
		"worker_or_group: " + s.Label,
		"hours: " + hours,
		"machine: " + s.Machine,
		"start_smu: " + s.StartSMU,
		"end_smu: " + s.EndSMU,
		"machine_hours: " + s.MachineHours,
		"location: " + s.Location,
		"activity: " + s.Activity,
		"material: " + s.Material,
		"comment: " + s.Comment,
		"source: " + s.SourceFile + "::" + s.Worksheet,
	}
	return "Review this extracted row:\n" + strings.Join(fields, "\n")
}
