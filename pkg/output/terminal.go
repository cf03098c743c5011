package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/types"
)

// Terminal writes styled, human-readable lines. Text mode is a Terminal
// with the Ascii profile.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles
}

var _ Reporter = (*Terminal)(nil)

// NewTerminal builds a Terminal rendering with profile.
func NewTerminal(w io.Writer, profile termenv.Profile) *Terminal {
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(profile)

	logger := logging.GetLogger("output.Terminal")
	logger.Debug().
		Str("profile", profileName(profile)).
		Msg("Terminal output created")

	return &Terminal{w: w, styles: DefaultStyles(renderer)}
}

func profileName(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "truecolor"
	case termenv.ANSI256:
		return "ansi256"
	case termenv.ANSI:
		return "ansi"
	default:
		return "ascii"
	}
}

func (t *Terminal) line(prompt, promptStyle, style, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, t.styles.Render(promptStyle, prompt)+t.styles.Render(style, message))
}

func (t *Terminal) tips(message string) { t.line(tipsPrompt, "TipsPrompt", "Success", message) }
func (t *Terminal) warn(message string) { t.line(warnPrompt, "WarnPrompt", "Warning", message) }
func (t *Terminal) fail(message string) { t.line(errorPrompt, "ErrorPrompt", "Error", message) }

func (t *Terminal) FileDeploySucceed(source, destination string) {
	t.tips(deploySucceedMessage(source, destination))
}

func (t *Terminal) FileDeployFailed(source, destination string, overwrite types.Overwrite, err error) {
	t.warn(deployFailedMessage(source, destination, overwrite, err))
}

func (t *Terminal) FileDeleteSucceed(path string) {
	t.tips(deleteSucceedMessage(path))
}

func (t *Terminal) FileDeleteFailed(path string, err error) {
	t.warn(deleteFailedMessage(path, err))
}

func (t *Terminal) FileNotExists(path string, deploymentFile bool) {
	if path == "" {
		return
	}
	if deploymentFile {
		t.line(warnPrompt, "WarnPrompt", "DeploymentFile", notExistsMessage(path, true))
		return
	}
	t.warn(notExistsMessage(path, false))
}

func (t *Terminal) UndefinedVariable(variable, expression, file string, line int) {
	t.fail(undefinedVariableMessage(variable, expression, file, line))
}

func (t *Terminal) UndefinedResolver(resolver, file string, line int) {
	t.fail(undefinedResolverMessage(resolver, file, line))
}

func (t *Terminal) ManifestFailed(path string, err error) {
	t.fail(manifestFailedMessage(path, err))
}

func (t *Terminal) PackageIllegal(argument string) {
	t.fail(packageIllegalMessage(argument))
}

func (t *Terminal) PackageNotFound(id, version string) {
	t.fail(packageNotFoundMessage(id, version))
}

func (t *Terminal) PackageUnmatched(id, version, framework string) {
	t.fail(packageUnmatchedMessage(id, version, framework))
}

func (t *Terminal) PackageDownloadFailed(id, version string, err error) {
	t.fail(packageDownloadFailedMessage(id, version, err))
}

// StartDeployment prints the manifests, options and variables of a run as
// labelled tables.
func (t *Terminal) StartDeployment(banner Banner) {
	var b strings.Builder

	rows := make(pterm.TableData, 0, len(banner.Manifests))
	for i, m := range banner.Manifests {
		index := t.styles.Render("Muted", "[") + t.styles.Render("Index", fmt.Sprint(i+1)) + t.styles.Render("Muted", "]")
		rows = append(rows, []string{index, t.styles.Render("Value", m)})
	}
	t.section(&b, "Deployment files:", rows)
	t.section(&b, "Options:", t.pairs(banner.Options))
	t.section(&b, "Variables:", t.pairs(banner.Variables))

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, b.String())
}

func (t *Terminal) pairs(pairs []Pair) pterm.TableData {
	rows := make(pterm.TableData, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{t.styles.Render("Key", p.Key), t.styles.Render("Value", p.Value)})
	}
	return rows
}

func (t *Terminal) section(b *strings.Builder, label string, rows pterm.TableData) {
	b.WriteString(t.styles.Render("Label", label))
	b.WriteString("\n")
	if len(rows) == 0 {
		return
	}

	plain := pterm.NewStyle()
	table, err := pterm.DefaultTable.
		WithData(rows).
		WithSeparator(t.styles.Render("Muted", " : ")).
		WithStyle(plain).
		WithHeaderStyle(plain).
		WithSeparatorStyle(plain).
		Srender()
	if err != nil {
		logger := logging.GetLogger("output.Terminal")
		logger.Warn().Err(err).Str("section", label).Msg("Table rendering failed")
		return
	}
	for _, row := range strings.Split(strings.TrimRight(table, "\n"), "\n") {
		b.WriteString("    ")
		b.WriteString(row)
		b.WriteString("\n")
	}
}

// CompleteDeployment prints the summary of a manifest framed by dashes as
// wide as the message. A blank line follows unless last is set.
func (t *Terminal) CompleteDeployment(path string, tally Tally, last bool) {
	head := completeMessage(path, tally.Total())
	succeeded := fmt.Sprintf("succeeded: %d", tally.Successes())
	failed := fmt.Sprintf("failed: %d", tally.Failures())
	plain := fmt.Sprintf("%s (%s, %s)", head, succeeded, failed)

	headStyle := "Success"
	if tally.Successes() == 0 {
		headStyle = "Warning"
	}
	styled := t.styles.Render(headStyle, head) + " (" +
		t.styles.Render("Count", succeeded) + ", " +
		t.styles.Render("FailedCount", failed) + ")"

	rule := strings.Repeat("-", runewidth.StringWidth(plain))

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, rule)
	_, _ = fmt.Fprintln(t.w, styled)
	_, _ = fmt.Fprintln(t.w, rule)
	if !last {
		_, _ = fmt.Fprintln(t.w)
	}
}
