package output_test

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deployer/pkg/deploy"
	"github.com/arthur-debert/deployer/pkg/output"
	"github.com/arthur-debert/deployer/pkg/types"
)

func plainTerminal() (*output.Terminal, *bytes.Buffer) {
	var buf bytes.Buffer
	return output.NewTerminal(&buf, termenv.Ascii), &buf
}

func TestTerminal_Events(t *testing.T) {
	tests := []struct {
		name string
		emit func(o types.Output)
		want string
	}{
		{
			name: "deploy succeeded",
			emit: func(o types.Output) { o.FileDeploySucceed("/src/a.dll", "/dst/a.dll") },
			want: "[Tips] The '/src/a.dll' file was deployed to '/dst/a.dll'.",
		},
		{
			name: "deploy skipped by never",
			emit: func(o types.Output) { o.FileDeployFailed("/src/a", "/dst/a", types.OverwriteNever, nil) },
			want: "[Warn] The '/src/a' file was not deployed because '/dst/a' already exists (overwrite: Never).",
		},
		{
			name: "deploy skipped by newest",
			emit: func(o types.Output) { o.FileDeployFailed("/src/a", "/dst/a", types.OverwriteNewest, nil) },
			want: "[Warn] The '/src/a' file was not deployed because '/dst/a' is not older (overwrite: Newest).",
		},
		{
			name: "deploy error",
			emit: func(o types.Output) {
				o.FileDeployFailed("/src/a", "/dst/a", types.OverwriteAlways, stderrors.New("disk full"))
			},
			want: "[Warn] The '/src/a' file could not be deployed to '/dst/a': disk full",
		},
		{
			name: "delete succeeded",
			emit: func(o types.Output) { o.FileDeleteSucceed("/dst/old.dll") },
			want: "[Tips] The '/dst/old.dll' file was deleted.",
		},
		{
			name: "missing file",
			emit: func(o types.Output) { o.FileNotExists("/src/missing.txt", false) },
			want: "[Warn] The '/src/missing.txt' file does not exist.",
		},
		{
			name: "missing deployment file",
			emit: func(o types.Output) { o.FileNotExists("/src/sub/.deploy", true) },
			want: "[Warn] The '/src/sub/.deploy' deployment file does not exist.",
		},
		{
			name: "undefined variable with line",
			emit: func(o types.Output) { o.UndefinedVariable("env", "${env}/a", "/src/.deploy", 7) },
			want: "[Error] The 'env' variable in the '${env}/a' expression is undefined, in /src/.deploy (#7).",
		},
		{
			name: "undefined variable without file",
			emit: func(o types.Output) { o.UndefinedVariable("root", "${root}", "", 0) },
			want: "[Error] The 'root' variable in the '${root}' expression is undefined.",
		},
		{
			name: "undefined resolver",
			emit: func(o types.Output) { o.UndefinedResolver("ftp", "/src/.deploy", 3) },
			want: "[Error] The 'ftp' resolver is undefined, in /src/.deploy (#3).",
		},
		{
			name: "package not found defaults to latest",
			emit: func(o types.Output) { o.PackageNotFound("Foo", "") },
			want: "[Error] The 'Foo@latest' package was not found.",
		},
		{
			name: "package unmatched",
			emit: func(o types.Output) { o.PackageUnmatched("Foo", "1.0.0", "net8.0") },
			want: "[Error] The 'Foo@1.0.0' package has no libraries for the 'net8.0' framework.",
		},
		{
			name: "package illegal",
			emit: func(o types.Output) { o.PackageIllegal("@1.0") },
			want: "[Error] The '@1.0' package argument is illegal.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, buf := plainTerminal()
			tt.emit(term)
			assert.Equal(t, tt.want+"\n", buf.String())
		})
	}
}

func TestTerminal_FileNotExistsIgnoresEmptyPath(t *testing.T) {
	term, buf := plainTerminal()
	term.FileNotExists("", false)
	assert.Empty(t, buf.String())
}

func TestTerminal_StartDeployment(t *testing.T) {
	term, buf := plainTerminal()
	term.StartDeployment(output.Banner{
		Manifests: []string{"/src/app.deploy"},
		Options:   []output.Pair{{Key: "overwrite", Value: "Never"}},
		Variables: []output.Pair{{Key: "environment", Value: "prod"}},
	})

	out := buf.String()
	assert.Contains(t, out, "Deployment files:")
	assert.Contains(t, out, "[1] : /src/app.deploy")
	assert.Contains(t, out, "Options:")
	assert.Contains(t, out, "overwrite : Never")
	assert.Contains(t, out, "Variables:")
	assert.Contains(t, out, "environment : prod")
	assert.NotContains(t, out, "\x1b[")
}

func TestTerminal_CompleteDeployment(t *testing.T) {
	counter := deploy.NewCounter("/src/.deploy")
	counter.Success()
	counter.Success()
	counter.Fail()

	term, buf := plainTerminal()
	term.CompleteDeployment("/src/.deploy", counter, false)

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 5)
	message := "Deployment of '/src/.deploy' completed, 3 files processed. (succeeded: 2, failed: 1)"
	assert.Equal(t, message, lines[1])
	assert.Equal(t, strings.Repeat("-", len(message)), lines[0])
	assert.Equal(t, lines[0], lines[2])
	assert.Empty(t, lines[3], "blank separator after a non-final manifest")
}

func TestTerminal_CompleteDeploymentLast(t *testing.T) {
	term, buf := plainTerminal()
	term.CompleteDeployment("/src/.deploy", deploy.NewCounter("/src/.deploy"), true)

	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

func TestTerminal_ColoredProfileEmitsEscapes(t *testing.T) {
	var buf bytes.Buffer
	term := output.NewTerminal(&buf, termenv.ANSI256)
	term.PackageNotFound("Foo", "1.0.0")

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Foo@1.0.0")
}
