package generator

// ChangeSet is the ordered list of source files to generate tests for.
type ChangeSet []string

// Request is what gets sent to the generation service for one file.
type Request struct {
	Path    string
	Package string
	Content string
	Prompt  string
}

// Result is the generated test file.
type Result struct {
	Path   string // source file
	Output string // written test file
	Text   string // fence-stripped content of Output
}

// Failure records a file whose test could not be generated.
type Failure struct {
	Path string
	Err  error
}

// Report summarizes a run.
type Report struct {
	Created []string
	Skipped []string
	Failed  []Failure
}
