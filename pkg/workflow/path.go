package workflow

// Path is the methodology track derived from the learner's worldview.
type Path string

const (
	PathQuantitative Path = "quantitative"
	PathQualitative  Path = "qualitative"
	PathMixed        Path = "mixed"
	PathUnresolved   Path = "unresolved"
)

// Methodology is the branch a mixed-path learner commits to at Step 4.
type Methodology string

const (
	MethodologyQuantitative Methodology = "quantitative"
	MethodologyQualitative  Methodology = "qualitative"
)

// ResolvePath maps a worldview id onto its methodology path. It is total:
// every input resolves, unknown or empty ids fall through to PathUnresolved.
func ResolvePath(w Worldview) Path {
	switch w {
	case WorldviewPositivist, WorldviewPostPositivist:
		return PathQuantitative
	case WorldviewConstructivist, WorldviewTransformative:
		return PathQualitative
	case WorldviewPragmatist:
		return PathMixed
	default:
		return PathUnresolved
	}
}

// IsValidMethodology reports whether m is one of the two choosable branches.
func IsValidMethodology(m Methodology) bool {
	return m == MethodologyQuantitative || m == MethodologyQualitative
}
