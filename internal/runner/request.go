package runner

// DefaultCompliance is the compliance level used when a Request leaves it empty.
const DefaultCompliance = "specification"

// Request describes one lint invocation.
//
// Compliance and LibraryManager are handed to the binary verbatim; the binary
// decides which values it accepts.
type Request struct {
	Path           string
	Compliance     string
	LibraryManager string
}

func (r Request) compliance() string {
	if r.Compliance == "" {
		return DefaultCompliance
	}
	return r.Compliance
}

// BuildArgs returns the argument list for req, without the executable.
//
// The order is fixed: compliance, library manager (only when set), format,
// then the project path.
func BuildArgs(req Request) []string {
	args := make([]string, 0, 7)
	args = append(args, "--compliance", req.compliance())
	if req.LibraryManager != "" {
		args = append(args, "--library-manager", req.LibraryManager)
	}
	args = append(args, "--format", "json", req.Path)
	return args
}
