package drift

import (
	"fmt"
	"strings"
)

const diffContext = 3

type lineOp struct {
	kind byte // ' ', '-' or '+'
	text string
}

type hunk struct {
	aStart, aLen int // 0-based start and line count in baseline
	bStart, bLen int
	ops          []lineOp
}

// UnifiedDiff produces a classic three-line-context unified diff between the
// baseline and current text of an unstructured file, intended for human
// review rather than structured consumption. Returns "" when the documents
// are line-identical.
func UnifiedDiff(path, baseline, current string) string {
	ops := diffOps(splitLines(baseline), splitLines(current))
	hunks := buildHunks(ops, diffContext)
	if len(hunks) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s (baseline)\n", path)
	fmt.Fprintf(&sb, "+++ %s (current)\n", path)
	for _, h := range hunks {
		fmt.Fprintf(&sb, "@@ -%s +%s @@\n", hunkRange(h.aStart, h.aLen), hunkRange(h.bStart, h.bLen))
		for _, op := range h.ops {
			sb.WriteByte(op.kind)
			sb.WriteString(op.text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// diffOps aligns the two line slices on their longest common subsequence and
// emits keep/delete/insert operations.
func diffOps(a, b []string) []lineOp {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []lineOp
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, lineOp{' ', a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, lineOp{'-', a[i]})
			i++
		default:
			ops = append(ops, lineOp{'+', b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, lineOp{'-', a[i]})
	}
	for ; j < m; j++ {
		ops = append(ops, lineOp{'+', b[j]})
	}
	return ops
}

// buildHunks groups changed operations with up to context unchanged lines on
// either side, merging hunks whose context would overlap.
func buildHunks(ops []lineOp, context int) []hunk {
	type span struct{ lo, hi int }
	var spans []span
	for idx, op := range ops {
		if op.kind == ' ' {
			continue
		}
		lo := idx - context
		if lo < 0 {
			lo = 0
		}
		hi := idx + context
		if hi > len(ops)-1 {
			hi = len(ops) - 1
		}
		if len(spans) > 0 && lo <= spans[len(spans)-1].hi+1 {
			if hi > spans[len(spans)-1].hi {
				spans[len(spans)-1].hi = hi
			}
		} else {
			spans = append(spans, span{lo, hi})
		}
	}
	if len(spans) == 0 {
		return nil
	}

	// Lines of baseline/current consumed before each op index.
	aBefore := make([]int, len(ops)+1)
	bBefore := make([]int, len(ops)+1)
	for idx, op := range ops {
		aBefore[idx+1] = aBefore[idx]
		bBefore[idx+1] = bBefore[idx]
		if op.kind != '+' {
			aBefore[idx+1]++
		}
		if op.kind != '-' {
			bBefore[idx+1]++
		}
	}

	hunks := make([]hunk, 0, len(spans))
	for _, sp := range spans {
		hunks = append(hunks, hunk{
			aStart: aBefore[sp.lo],
			aLen:   aBefore[sp.hi+1] - aBefore[sp.lo],
			bStart: bBefore[sp.lo],
			bLen:   bBefore[sp.hi+1] - bBefore[sp.lo],
			ops:    ops[sp.lo : sp.hi+1],
		})
	}
	return hunks
}

// hunkRange renders a start,count pair in unified diff convention: a count of
// one omits the count, a count of zero points at the preceding line.
func hunkRange(start, length int) string {
	switch length {
	case 0:
		return fmt.Sprintf("%d,0", start)
	case 1:
		return fmt.Sprintf("%d", start+1)
	}
	return fmt.Sprintf("%d,%d", start+1, length)
}
