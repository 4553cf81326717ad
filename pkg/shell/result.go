package shell

// Status is the exit status of a finished process. A process terminated by a
// signal has Code -1 and the signal's name in Signal.
type Status struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Signal  string `json:"signal,omitempty"`
}

// PipedOutput holds captured text. A stream that was not piped decodes as "".
type PipedOutput struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// Result is what a run produced. Output is nil unless stdout or stderr was
// piped, so "nothing captured" and "captured nothing" stay distinguishable.
type Result struct {
	Status Status       `json:"status"`
	Output *PipedOutput `json:"output,omitempty"`
}

func (r Result) IsPiped() bool {
	return r.Output != nil
}

// Stdout returns the captured stdout, or "" when nothing was piped.
func (r Result) Stdout() string {
	if r.Output == nil {
		return ""
	}
	return r.Output.Stdout
}

// Stderr returns the captured stderr, or "" when nothing was piped.
func (r Result) Stderr() string {
	if r.Output == nil {
		return ""
	}
	return r.Output.Stderr
}
