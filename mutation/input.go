package mutation

// InputKind tells which variant a SubmissionInput holds.
type InputKind int

const (
	InputFiles InputKind = iota + 1
	InputURLs
)

func (k InputKind) String() string {
	switch k {
	case InputFiles:
		return "FILE"
	case InputURLs:
		return "URL"
	default:
		return "NONE"
	}
}

// SubmissionInput holds the documents of a submission: either local file
// paths or remote URLs, never both.
type SubmissionInput struct {
	kind   InputKind
	values []string
}

func FromFiles(paths ...string) SubmissionInput {
	return SubmissionInput{kind: InputFiles, values: append([]string(nil), paths...)}
}

func FromURLs(urls ...string) SubmissionInput {
	return SubmissionInput{kind: InputURLs, values: append([]string(nil), urls...)}
}

func (in SubmissionInput) Kind() InputKind {
	return in.kind
}

func (in SubmissionInput) Values() []string {
	return append([]string(nil), in.values...)
}

func (in SubmissionInput) valid() bool {
	return (in.kind == InputFiles || in.kind == InputURLs) && len(in.values) > 0
}
