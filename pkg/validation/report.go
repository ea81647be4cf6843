package validation

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/skilldocs/skillcheck/pkg/types/findings"
)

// SubjectResult is the error tally of one descriptor or rule document
type SubjectResult struct {
	Path   string
	Errors int
}

// PhaseResult aggregates one validation phase
type PhaseResult struct {
	Name     string
	Subjects []SubjectResult
	Errors   []findings.ValidationError
	Faults   []error
}

// Passed reports whether the phase found no violations and hit no faults
func (p *PhaseResult) Passed() bool {
	return len(p.Errors) == 0 && len(p.Faults) == 0
}

// FailedSubjects returns the number of subjects with at least one violation
func (p *PhaseResult) FailedSubjects() int {
	n := 0
	for _, s := range p.Subjects {
		if s.Errors > 0 {
			n++
		}
	}
	return n
}

func (p *PhaseResult) record(path string, errs []findings.ValidationError) {
	p.Subjects = append(p.Subjects, SubjectResult{Path: path, Errors: len(errs)})
	p.Errors = append(p.Errors, errs...)
}

func (p *PhaseResult) fault(err error) {
	p.Faults = append(p.Faults, err)
}

// Report is the outcome of one validation run
type Report struct {
	RunID     string
	Integrity PhaseResult
	Documents PhaseResult
}

// Passed reports whether both phases passed
func (r *Report) Passed() bool {
	return r.Integrity.Passed() && r.Documents.Passed()
}

// ExitCode is 0 when every validation passed and 1 otherwise
func (r *Report) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

// TotalErrors returns the number of violations across both phases
func (r *Report) TotalErrors() int {
	return len(r.Integrity.Errors) + len(r.Documents.Errors)
}

// TotalFaults returns the number of I/O faults across both phases
func (r *Report) TotalFaults() int {
	return len(r.Integrity.Faults) + len(r.Documents.Faults)
}

// FailedSubjects returns the number of documents with violations
func (r *Report) FailedSubjects() int {
	return r.Integrity.FailedSubjects() + r.Documents.FailedSubjects()
}

// Summary is the final verdict line
func (r *Report) Summary() string {
	if r.Passed() {
		return "All validations passed!"
	}
	summary := fmt.Sprintf("Validations failed: %d error(s) in %d document(s)", r.TotalErrors(), r.FailedSubjects())
	if faults := r.TotalFaults(); faults > 0 {
		summary += fmt.Sprintf(", %d fault(s)", faults)
	}
	return summary + "."
}

// Err returns every violation and fault as one error, or nil
func (r *Report) Err() error {
	var result *multierror.Error
	for _, phase := range []*PhaseResult{&r.Integrity, &r.Documents} {
		for _, e := range phase.Errors {
			result = multierror.Append(result, e)
		}
		result = multierror.Append(result, phase.Faults...)
	}
	return result.ErrorOrNil()
}
