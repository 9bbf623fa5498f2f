package emitter

import (
	"fmt"
	"strings"
)

// Template is the fixed host-language scaffold the driver splices emitted
// statements into, per spec.md §4.8 and §6 ("a fixed host-language
// template between marker comments"). Designing or evolving this scaffold
// is the output-template injection mechanism spec.md §1 calls out as an
// external collaborator; rosyc's only responsibility is the textual splice
// below, not the template's own authoring.
const Template = `// generated by rosyc — do not edit by hand
use anyhow::{Context, Result};
use rosy_lib::*;

fn main() -> Result<()> {
    // >>> ROSYC_GENERATED_CODE_START
    // >>> ROSYC_GENERATED_CODE_END
    Ok(())
}
`

const startMarker = "// >>> ROSYC_GENERATED_CODE_START"
const endMarker = "// >>> ROSYC_GENERATED_CODE_END"

// Splice replaces the template's two marker comments, and the text between
// them, with body, each line of which is indented by one tab; the markers
// do not appear in the output. defaultDaini, when non-empty, is
// inserted ahead of body — used when the source program never issued an
// explicit DAINI statement (spec.md §6.3.1's default order-10/variable-6
// initialisation).
func Splice(body, defaultDaini string) (string, error) {
	startIdx := strings.Index(Template, startMarker)
	endIdx := strings.Index(Template, endMarker)
	if startIdx == -1 || endIdx == -1 {
		return "", fmt.Errorf("template is missing its marker comments")
	}

	var full strings.Builder
	if defaultDaini != "" {
		full.WriteString(defaultDaini)
		full.WriteString("\n")
	}
	full.WriteString(body)

	indented := indentBlock(full.String())
	return Template[:startIdx] + indented + Template[endIdx+len(endMarker):], nil
}
