// Package udiff renders and applies unified diffs. Diffs are computed
// line-wise with sergi/go-diff and emitted with standard ---/+++ headers
// and @@ hunks so they can be read by humans and reapplied verbatim.
package udiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const contextLines = 3

const noNewlineMarker = "\\ No newline at end of file"

type opKind int8

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

// lineOp is a single line of the diff. piece keeps its trailing newline
// unless it was the last line of an input that did not end with one.
type lineOp struct {
	kind  opKind
	piece string
}

// Unified returns the unified diff from a to b, or "" when a == b.
func Unified(a, b, fromPath, toPath string) string {
	if a == b {
		return ""
	}

	ops := lineDiff(a, b)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n", fromPath)
	fmt.Fprintf(&sb, "+++ %s\n", toPath)

	hunks := groupHunks(ops)
	for _, h := range hunks {
		writeHunk(&sb, ops, h)
	}

	return sb.String()
}

// lineDiff produces per-line ops using go-diff's line mode: lines are
// packed into runes, diffed, then unpacked back into whole lines.
func lineDiff(a, b string) []lineOp {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(ca, cb, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var ops []lineOp
	for _, d := range diffs {
		var kind opKind
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			kind = opDelete
		case diffmatchpatch.DiffInsert:
			kind = opInsert
		default:
			kind = opEqual
		}
		for _, piece := range splitPieces(d.Text) {
			ops = append(ops, lineOp{kind: kind, piece: piece})
		}
	}

	return ops
}

// splitPieces splits text into lines that keep their trailing newline.
// A final line without one is returned as-is.
func splitPieces(text string) []string {
	if text == "" {
		return nil
	}
	var pieces []string
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			pieces = append(pieces, text)
			break
		}
		pieces = append(pieces, text[:i+1])
		text = text[i+1:]
	}
	return pieces
}

type hunkRange struct {
	start, end int // op indexes, end exclusive
}

// groupHunks finds runs of changed ops and widens each by the context
// margin, merging runs whose context would overlap.
func groupHunks(ops []lineOp) []hunkRange {
	var hunks []hunkRange
	i := 0
	for i < len(ops) {
		if ops[i].kind == opEqual {
			i++
			continue
		}

		start := max(0, i-contextLines)
		end := i
		for end < len(ops) {
			if ops[end].kind != opEqual {
				end++
				continue
			}
			// Probe the equal run; stop the hunk if it is wide enough
			// to separate two hunks.
			run := end
			for run < len(ops) && ops[run].kind == opEqual {
				run++
			}
			if run-end > 2*contextLines && run < len(ops) {
				end += contextLines
				break
			}
			if run >= len(ops) {
				end = min(run, end+contextLines)
				break
			}
			end = run
		}

		hunks = append(hunks, hunkRange{start: start, end: end})
		i = end
	}

	return hunks
}

func writeHunk(sb *strings.Builder, ops []lineOp, h hunkRange) {
	// Line numbers of the hunk start in a and b (1-based).
	aStart, bStart := 1, 1
	for _, op := range ops[:h.start] {
		switch op.kind {
		case opEqual:
			aStart++
			bStart++
		case opDelete:
			aStart++
		case opInsert:
			bStart++
		}
	}

	aCount, bCount := 0, 0
	for _, op := range ops[h.start:h.end] {
		switch op.kind {
		case opEqual:
			aCount++
			bCount++
		case opDelete:
			aCount++
		case opInsert:
			bCount++
		}
	}

	// Per convention an empty side reports the line before the hunk.
	ha, hb := aStart, bStart
	if aCount == 0 {
		ha--
	}
	if bCount == 0 {
		hb--
	}
	fmt.Fprintf(sb, "@@ -%d,%d +%d,%d @@\n", ha, aCount, hb, bCount)

	for _, op := range ops[h.start:h.end] {
		var marker byte
		switch op.kind {
		case opEqual:
			marker = ' '
		case opDelete:
			marker = '-'
		case opInsert:
			marker = '+'
		}
		sb.WriteByte(marker)
		sb.WriteString(strings.TrimSuffix(op.piece, "\n"))
		sb.WriteByte('\n')
		if !strings.HasSuffix(op.piece, "\n") {
			sb.WriteString(noNewlineMarker)
			sb.WriteByte('\n')
		}
	}
}

// Apply reapplies a diff produced by Unified to a and returns the
// patched text. It fails if the diff does not match a.
func Apply(a, diff string) (string, error) {
	if diff == "" {
		return a, nil
	}

	src := splitPieces(a)
	var out []string
	pos := 0 // index into src

	lines := strings.Split(diff, "\n")
	i := 0
	// Skip ---/+++ headers.
	for i < len(lines) && (strings.HasPrefix(lines[i], "--- ") || strings.HasPrefix(lines[i], "+++ ")) {
		i++
	}

	for i < len(lines) {
		line := lines[i]
		if line == "" && i == len(lines)-1 {
			break
		}
		if !strings.HasPrefix(line, "@@ ") {
			return "", fmt.Errorf("udiff: unexpected line %q", line)
		}

		var aStart, aCount, bStart, bCount int
		if _, err := fmt.Sscanf(line, "@@ -%d,%d +%d,%d @@", &aStart, &aCount, &bStart, &bCount); err != nil {
			return "", fmt.Errorf("udiff: bad hunk header %q: %w", line, err)
		}
		i++

		// Copy unchanged lines preceding the hunk.
		target := aStart - 1
		if aCount == 0 {
			target = aStart
		}
		for pos < target {
			if pos >= len(src) {
				return "", fmt.Errorf("udiff: hunk start %d beyond input", aStart)
			}
			out = append(out, src[pos])
			pos++
		}

		var prev byte
		for i < len(lines) {
			body := lines[i]
			if body == "" && i == len(lines)-1 {
				break
			}
			if strings.HasPrefix(body, "@@ ") {
				break
			}
			i++

			if strings.HasPrefix(body, "\\") {
				// The preceding line has no trailing newline. Only added
				// lines need fixing up; context lines were copied verbatim
				// and deleted lines never reached the output.
				if prev == '+' && len(out) > 0 {
					out[len(out)-1] = strings.TrimSuffix(out[len(out)-1], "\n")
				}
				continue
			}
			if body == "" {
				body = " "
			}
			prev = body[0]

			switch body[0] {
			case ' ':
				if pos >= len(src) || strings.TrimSuffix(src[pos], "\n") != body[1:] {
					return "", fmt.Errorf("udiff: context mismatch at line %d", pos+1)
				}
				out = append(out, src[pos])
				pos++
			case '-':
				if pos >= len(src) || strings.TrimSuffix(src[pos], "\n") != body[1:] {
					return "", fmt.Errorf("udiff: delete mismatch at line %d", pos+1)
				}
				pos++
			case '+':
				out = append(out, body[1:]+"\n")
			default:
				return "", fmt.Errorf("udiff: bad hunk line %q", body)
			}
		}
	}

	// Trailing unchanged lines.
	out = append(out, src[pos:]...)

	return strings.Join(out, ""), nil
}
