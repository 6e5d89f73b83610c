package core

// minElidedRun is the shortest run of identical row errors that collapses.
const minElidedRun = 3

// Collapse shortens runs of repeated row errors. A run is three or more
// consecutive row-scope errors in the same column with equal kind,
// expected and found values on consecutive rows; it is replaced by its
// first error, an elided marker and its last error. Other entries pass
// through in order. Collapsing a collapsed list changes nothing.
func Collapse(errs []ConformanceError) []ConformanceError {
	out := make([]ConformanceError, 0, len(errs))

	i := 0
	for i < len(errs) {
		e := errs[i]
		if e.Scope != ScopeRow || e.Elided {
			out = append(out, e)
			i++
			continue
		}

		j := i + 1
		for j < len(errs) && continuesRun(errs[j-1], errs[j]) {
			j++
		}

		if j-i >= minElidedRun {
			marker := e
			marker.Row = 0
			marker.Elided = true
			out = append(out, e, marker, errs[j-1])
		} else {
			out = append(out, errs[i:j]...)
		}
		i = j
	}
	return out
}

func continuesRun(prev, next ConformanceError) bool {
	return next.Scope == ScopeRow &&
		!next.Elided &&
		next.Table == prev.Table &&
		next.Column == prev.Column &&
		next.Kind == prev.Kind &&
		next.Expected == prev.Expected &&
		next.Found == prev.Found &&
		next.Row == prev.Row+1
}
