package witness

import (
	"bufio"
	"fmt"
	"io"
)

const graphHeader = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<graphml xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns="http://graphml.graphdrawing.org/xmlns">
	<key attr.name="lineNumberInOrigin" attr.type="int" for="edge" id="originline"/>
	<key attr.name="originFileName" attr.type="string" for="edge" id="originfile">
		<default>&lt;command-line&gt;</default>
	</key>
	<key attr.name="sourcecode" attr.type="string" for="edge" id="sourcecode"/>
	<key attr.name="isViolationNode" attr.type="boolean" for="node" id="violation">
		<default>false</default>
	</key>
	<key attr.name="isEntryNode" attr.type="boolean" for="node" id="entry">
		<default>false</default>
	</key>
	<graph edgedefault="directed">
		<data key="sourcecodelang">C</data>
`

const graphFooter = "\t</graph>\n</graphml>\n"

// Write renders steps as an SV-Comp GraphML witness: one node per step
// (entry on the first, violation on the last) and one edge per step
// carrying originfile/originline and, when present, sourcecode.
func Write(w io.Writer, steps []Step) error {
	if len(steps) == 0 {
		return ErrEmptyTrace
	}
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, graphHeader)

	for i, s := range steps {
		fmt.Fprintf(bw, "\t\t<node id=\"A%d\">\n", i)
		if i == 0 {
			fmt.Fprint(bw, "\t\t\t<data key=\"entry\">true</data>\n")
		}
		fmt.Fprint(bw, "\t\t</node>\n")

		fmt.Fprintf(bw, "\t\t<edge source=\"A%d\" target=\"A%d\">\n", i, i+1)
		fmt.Fprintf(bw, "\t\t\t<data key=\"originfile\">%s</data>\n", escape(s.File))
		fmt.Fprintf(bw, "\t\t\t<data key=\"originline\">%d</data>\n", s.Line)
		if s.SourceCode != "" {
			fmt.Fprintf(bw, "\t\t\t<data key=\"sourcecode\">%s</data>\n", escape(s.SourceCode))
		}
		fmt.Fprint(bw, "\t\t</edge>\n")
	}

	fmt.Fprintf(bw, "\t\t<node id=\"A%d\">\n", len(steps))
	fmt.Fprint(bw, "\t\t\t<data key=\"violation\">true</data>\n")
	fmt.Fprint(bw, "\t\t</node>\n")

	fmt.Fprint(bw, graphFooter)
	return bw.Flush()
}

func escape(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '&':
			out = append(out, []rune("&amp;")...)
		case '<':
			out = append(out, []rune("&lt;")...)
		case '>':
			out = append(out, []rune("&gt;")...)
		case '"':
			out = append(out, []rune("&quot;")...)
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
