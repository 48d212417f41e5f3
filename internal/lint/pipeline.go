package lint

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dotcommander/glsllint/internal/diagnostic"
	"github.com/dotcommander/glsllint/internal/expand"
	"github.com/dotcommander/glsllint/internal/shader"
	"github.com/dotcommander/glsllint/internal/sourcemap"
	"github.com/dotcommander/glsllint/internal/telemetry"
	"github.com/dotcommander/glsllint/internal/textutil"
	"github.com/dotcommander/glsllint/internal/types"
)

// Report is the outcome of one lint request.
type Report struct {
	Path  string
	Stage shader.Stage
	// Units lists the original paths submitted to the validator, the linted
	// file first.
	Units    []string
	Linked   bool
	Expanded bool
	// Diagnostics is never nil; an empty slice means the shader is clean.
	Diagnostics []types.Diagnostic
	Duration    time.Duration
}

// Counts returns the number of error, warning and info diagnostics.
func (r *Report) Counts() (errs, warnings, infos int) {
	return countBySeverity(r.Diagnostics)
}

// remapTarget translates diagnostics of one expanded unit.
type remapTarget struct {
	remapper *sourcemap.Remapper
	// primary is the map's entry source, which stands for the unit itself.
	primary string
	path    string
	dir     string
}

// Lint validates content as the shader at path.
//
// A nil Report with a nil error means the request failed internally (the
// validator could not run, expansion failed) and the host should keep
// whatever it showed before; the failure is logged. The only errors
// returned are ErrEmptyPath and shader.ErrUnrecognizedShaderNaming.
func (s *Session) Lint(ctx context.Context, path, content string) (*Report, error) {
	tokens, err := classify(path)
	if err != nil {
		return nil, err
	}

	snap := s.state.Load()
	start := time.Now()

	ctx, span := telemetry.StartLintSpan(ctx, tokens.Stage.Name, path)
	defer span.End()

	units, targets, expanded, err := s.prepare(ctx, snap, tokens, content)
	if err != nil {
		s.fail(ctx, span, tokens, start, err)
		return nil, nil
	}

	link := snap.settings.LinkSimilarShaders && len(units) > 1
	output, err := runValidator(ctx, snap, units, link)
	if err != nil {
		s.fail(ctx, span, tokens, start, err)
		return nil, nil
	}

	diags := diagnostic.Parse(units, output, textutil.FirstLineRange(content))
	diags = remapDiagnostics(diags, targets)
	if diags == nil {
		diags = []types.Diagnostic{}
	}

	report := &Report{
		Path:        path,
		Stage:       tokens.Stage,
		Units:       unitPaths(units),
		Linked:      link,
		Expanded:    expanded,
		Diagnostics: diags,
		Duration:    time.Since(start),
	}

	errs, warnings, _ := report.Counts()
	telemetry.SetLintSpanResult(span, errs, warnings, len(units), link)
	telemetry.RecordLint(ctx, tokens.Stage.Name, report.Duration, errs, warnings, true)

	slog.Debug("Linted shader",
		slog.String("path", path),
		slog.String("stage", tokens.Stage.Name),
		slog.Int("units", len(units)),
		slog.Int("diagnostics", len(diags)),
		slog.Duration("duration", report.Duration),
	)

	return report, nil
}

// prepare builds the validator units: the linted content first, then any
// sibling stages read from disk when linking is enabled. Units that use
// glslify are expanded and get a remap target when a source map came back.
func (s *Session) prepare(ctx context.Context, snap *snapshot, tokens *shader.Tokens, content string) ([]shader.Unit, map[string]*remapTarget, bool, error) {
	targets := make(map[string]*remapTarget)
	anyExpanded := false

	primary := shader.NewUnit(tokens, content)
	units := []shader.Unit{primary}
	if snap.settings.LinkSimilarShaders {
		units = append(units, shader.SiblingUnits(tokens)...)
	}

	for i := range units {
		text, target, expanded, err := expandUnit(ctx, snap, units[i])
		if err != nil {
			return nil, nil, false, err
		}
		if !expanded {
			continue
		}
		anyExpanded = true
		units[i].Content = text
		if target != nil {
			targets[units[i].Path] = target
		}
	}

	return units, targets, anyExpanded, nil
}

func expandUnit(ctx context.Context, snap *snapshot, unit shader.Unit) (string, *remapTarget, bool, error) {
	if snap.expander == nil || !expand.NeedsExpansion(unit.Content) {
		return unit.Content, nil, false, nil
	}

	dir := filepath.Dir(unit.Path)
	ctx, span := telemetry.StartSpan(ctx, "Expander.Expand", attribute.String("expand.file_path", unit.Path))
	defer span.End()

	res, err := snap.expander.Expand(ctx, unit.Content, dir)
	telemetry.RecordExpansion(ctx, err == nil, err == nil && res.Map != nil)
	if err != nil {
		span.RecordError(err)
		return "", nil, false, err
	}

	if res.Map == nil {
		return res.Text, nil, true, nil
	}
	return res.Text, &remapTarget{
		remapper: sourcemap.NewRemapper(res.Text, res.Map),
		primary:  res.Map.Source(),
		path:     unit.Path,
		dir:      dir,
	}, true, nil
}

func runValidator(ctx context.Context, snap *snapshot, units []shader.Unit, link bool) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "Validator.Run",
		attribute.String("validator.command", snap.command),
		attribute.Int("validator.units", len(units)),
		attribute.Bool("validator.link", link),
	)
	defer span.End()

	output, err := snap.invoker.Run(ctx, units, link)
	if err != nil {
		span.RecordError(err)
	}
	return output, err
}

// remapDiagnostics moves compile diagnostics of expanded units back onto
// the original text. Link diagnostics already point at the original file.
// Positions that cannot be remapped are left unchanged.
func remapDiagnostics(diags []types.Diagnostic, targets map[string]*remapTarget) []types.Diagnostic {
	if len(targets) == 0 {
		return diags
	}

	for i := range diags {
		d := &diags[i]
		if d.Source == types.SourceLink {
			continue
		}
		target := targets[d.File]
		if target == nil {
			continue
		}

		source, rng, ok := target.remapper.RemapRange(d.Range)
		if !ok {
			continue
		}
		d.Range = rng
		if !target.isUnit(source) {
			d.File = target.resolve(source)
		}
	}
	return diags
}

// isUnit reports whether source names the expanded unit rather than an
// imported module.
func (t *remapTarget) isUnit(source string) bool {
	if source == "" || source == t.primary {
		return true
	}
	return filepath.Clean(t.resolve(source)) == filepath.Clean(t.path)
}

// resolve turns a source map source name into a file path.
func (t *remapTarget) resolve(source string) string {
	source = strings.TrimPrefix(source, "file://")
	if filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(t.dir, filepath.FromSlash(source))
}

func (s *Session) fail(ctx context.Context, span trace.Span, tokens *shader.Tokens, start time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	telemetry.RecordLint(ctx, tokens.Stage.Name, time.Since(start), 0, 0, false)

	if ctx.Err() != nil {
		slog.Debug("Lint cancelled", slog.String("path", tokens.FullPath))
		return
	}
	slog.Error("Lint failed",
		slog.String("path", tokens.FullPath),
		slog.String("error", err.Error()),
	)
}

func unitPaths(units []shader.Unit) []string {
	paths := make([]string, 0, len(units))
	for _, u := range units {
		paths = append(paths, u.Path)
	}
	return paths
}

func countBySeverity(diags []types.Diagnostic) (errs, warnings, infos int) {
	for _, d := range diags {
		switch d.Severity {
		case types.SeverityError:
			errs++
		case types.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return errs, warnings, infos
}
