// Package validation runs the skill documentation checks over a skills tree:
// referential integrity between each descriptor and its rules directory,
// then frontmatter and structure of every rule document.
package validation

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/skilldocs/skillcheck/pkg/logger"
	"github.com/skilldocs/skillcheck/pkg/rules"
	"github.com/skilldocs/skillcheck/pkg/skills"
	"github.com/skilldocs/skillcheck/pkg/telemetry"
	"github.com/skilldocs/skillcheck/pkg/walker"
)

// Reporter receives the human readable progress of a run
type Reporter interface {
	Success(message string)
	Failure(message string)
	Info(message string)
	Verdict(passed bool, message string)
	Error(err error, context string)
}

// ReadFile reads a whole file
type ReadFile func(path string) ([]byte, error)

// Validator runs both validation phases
type Validator struct {
	discovery *skills.Discovery
	out       Reporter
	readFile  ReadFile
	exists    skills.Exists
}

// Option configures a Validator
type Option func(*Validator)

// WithReadFile replaces os.ReadFile
func WithReadFile(fn ReadFile) Option {
	return func(v *Validator) {
		v.readFile = fn
	}
}

// WithExists replaces the existence check used for descriptor references
func WithExists(fn skills.Exists) Option {
	return func(v *Validator) {
		v.exists = fn
	}
}

// New creates a Validator reporting to out
func New(discovery *skills.Discovery, out Reporter, opts ...Option) *Validator {
	v := &Validator{
		discovery: discovery,
		out:       out,
		readFile:  os.ReadFile,
		exists:    skills.PathExists,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run performs a full validation pass and prints the verdict
func (v *Validator) Run(ctx context.Context) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		Integrity: PhaseResult{Name: "referential-integrity"},
		Documents: PhaseResult{Name: "frontmatter"},
	}

	ctx = logger.WithFields(ctx, logrus.Fields{"run_id": report.RunID, "root": v.discovery.Root()})
	ctx, span := telemetry.StartSpan(ctx, "validation.run",
		attribute.String("run_id", report.RunID),
		attribute.String("root", v.discovery.Root()),
	)

	v.CheckReferentialIntegrity(ctx, &report.Integrity)
	v.CheckRuleDocuments(ctx, &report.Documents)

	v.out.Verdict(report.Passed(), report.Summary())
	logger.G(ctx).WithFields(logrus.Fields{
		"errors": report.TotalErrors(),
		"faults": report.TotalFaults(),
		"passed": report.Passed(),
	}).Info("validation run finished")

	telemetry.EndWithOutcome(span, report.TotalErrors()+report.TotalFaults())
	return report
}

// CheckReferentialIntegrity checks every selected skill descriptor against
// its rules directory in both directions. It returns whether the phase
// passed.
func (v *Validator) CheckReferentialIntegrity(ctx context.Context, phase *PhaseResult) bool {
	ctx, span := telemetry.StartSpan(ctx, "validation.referential_integrity")
	v.out.Info("🔍 Checking referential integrity...")

	found, err := v.discovery.DiscoverSkills()
	if err != nil {
		v.fault(ctx, phase, err, "failed to discover skills")
	}

	for _, skill := range found {
		v.checkSkill(ctx, phase, skill)
	}

	telemetry.EndWithOutcome(span, len(phase.Errors)+len(phase.Faults))
	return phase.Passed()
}

func (v *Validator) checkSkill(ctx context.Context, phase *PhaseResult, skill *skills.Skill) {
	ctx = logger.WithFields(ctx, logrus.Fields{"skill": skill.Name})
	ctx, span := telemetry.StartSpan(ctx, "validation.skill", attribute.String("skill", skill.Name))
	errCount := len(phase.Errors)
	defer func() { telemetry.EndWithOutcome(span, len(phase.Errors)-errCount) }()

	v.out.Info("\nSkill: " + skill.Name)

	content, err := v.readFile(skill.DescriptorPath)
	if err != nil {
		v.fault(ctx, phase, errors.Wrapf(err, "failed to read %s", skill.DescriptorPath), "")
		return
	}

	ruleFiles, exists, err := skills.ListRuleFiles(skill.RulesDir, v.discovery.RuleExt())
	if err != nil {
		v.fault(ctx, phase, err, "")
		return
	}
	if !exists {
		// Indistinguishable from a skill that has no rules yet
		logger.G(ctx).WithField("rules_dir", skill.RulesDir).Debug("no rules directory, skipping reference checks")
		phase.record(skill.DescriptorPath, nil)
		return
	}

	text := string(content)
	checks := skills.UnregisteredRulesIn(skill.DescriptorPath, v.discovery.RulesDirName(), text, ruleFiles)
	v.reportChecks(checks, func(item string) string {
		return strings.TrimSuffix(item, v.discovery.RuleExt())
	})

	refs := skills.MissingReferencesIn(skill.DescriptorPath, skill.RulesDir,
		v.discovery.RulesDirName(), v.discovery.RuleExt(), text, v.exists)
	v.reportChecks(refs, func(item string) string { return item })

	errs := append(skills.Errors(checks), skills.Errors(refs)...)
	phase.record(skill.DescriptorPath, errs)

	logger.G(ctx).WithFields(logrus.Fields{
		"rules":      len(ruleFiles),
		"references": len(refs),
		"errors":     len(errs),
	}).Debug("skill checked")
}

func (v *Validator) reportChecks(checks []skills.Check, label func(string) string) {
	for _, c := range checks {
		if c.Passed() {
			v.out.Success(label(c.Item))
		} else {
			v.out.Failure(c.Err.Message)
		}
	}
}

// CheckRuleDocuments validates the frontmatter and structure of every rule
// document under the root. It returns whether the phase passed.
func (v *Validator) CheckRuleDocuments(ctx context.Context, phase *PhaseResult) bool {
	ctx, span := telemetry.StartSpan(ctx, "validation.rule_documents")
	v.out.Info("\n🔍 Validating rule frontmatter and structure...")

	paths, err := walker.Walk(v.discovery.Root(),
		walker.All(walker.HasExt(v.discovery.RuleExt()), walker.UnderSegment(v.discovery.RulesDirName())),
		walker.WithIgnore(v.discovery.Ignore()...),
	)
	if err != nil {
		v.fault(ctx, phase, err, "failed to list rule documents")
	}

	for _, path := range paths {
		if !v.discovery.Selected(v.discovery.SkillForRule(path)) {
			continue
		}
		v.checkDocument(ctx, phase, path)
	}

	telemetry.EndWithOutcome(span, len(phase.Errors)+len(phase.Faults))
	return phase.Passed()
}

func (v *Validator) checkDocument(ctx context.Context, phase *PhaseResult, path string) {
	ctx, span := telemetry.StartSpan(ctx, "validation.rule_document", attribute.String("path", path))

	content, err := v.readFile(path)
	if err != nil {
		v.fault(ctx, phase, errors.Wrapf(err, "failed to read %s", path), "")
		telemetry.EndWithOutcome(span, 1)
		return
	}

	errs := rules.ValidateDocument(path, string(content))
	for _, e := range errs {
		v.out.Failure(e.Message)
	}
	phase.record(path, errs)

	logger.G(ctx).WithFields(logrus.Fields{"document": path, "errors": len(errs)}).Debug("rule document checked")
	telemetry.EndWithOutcome(span, len(errs))
}

func (v *Validator) fault(ctx context.Context, phase *PhaseResult, err error, msg string) {
	if msg != "" {
		err = errors.Wrap(err, msg)
	}
	phase.fault(err)
	telemetry.RecordError(ctx, err)
	logger.G(ctx).WithError(err).Error("validation fault")
	v.out.Error(err, "")
}
