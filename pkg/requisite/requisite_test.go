package requisite_test

import (
	"testing"

	"github.com/arthur-debert/deployer/pkg/requisite"
	"github.com/arthur-debert/deployer/pkg/variables"
	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		input    string
		wantRest string
		wantReq  string
	}{
		{"debug.pdb<Environment:Debug>", "debug.pdb", "Environment:Debug"},
		{"  app.dll  ", "app.dll", ""},
		{"lib/<Framework:net8.0^> x", "lib/ x", "Framework:net8.0^"},
		{"broken>here<", "broken>here<", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rest, req := requisite.Extract(tt.input)
			assert.Equal(t, tt.wantRest, rest)
			assert.Equal(t, tt.wantReq, req)
		})
	}
}

func TestCombine(t *testing.T) {
	assert.Equal(t, "a & b", requisite.Combine("a", "b"))
	assert.Equal(t, "a", requisite.Combine("a", ""))
	assert.Equal(t, "b", requisite.Combine(" ", "b"))
	assert.Equal(t, "", requisite.Combine("", ""))
}

func TestEvaluate_Clauses(t *testing.T) {
	store := variables.FromMap(map[string]string{
		"Environment": "Debug",
		"Flag":        "",
		"Framework":   "net8.0",
	})

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"Environment", true},
		{"environment", true},
		{"Missing", false},
		{"!Missing", true},
		{"!Environment", false},
		{"Flag", true},
		{"Environment:debug", true},
		{"Environment: Release , Debug ", true},
		{"Environment:Release", false},
		{"!Environment:Release", true},
		{"Missing:x", false},
		{"!Missing:x", true},
		{"Environment:", true},
		{"Missing:", false},
		{"Framework:net6.0^", true},
		{"Framework:net9.0^", false},
		{"Framework:net472,net8.0", true},
		{"Framework:net472;net6.0", false},
		{"!Framework:net8.0", false},
		{"Framework", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, requisite.Evaluate(store, tt.expr))
		})
	}
}

func TestEvaluate_FrameworkAbsent(t *testing.T) {
	store := variables.NewStore()

	assert.False(t, requisite.Evaluate(store, "Framework:net8.0"))
	assert.True(t, requisite.Evaluate(store, "!Framework:net8.0"))
	assert.False(t, requisite.Evaluate(store, "Framework"))
}

func TestEvaluate_NegationIsExact(t *testing.T) {
	store := variables.FromMap(map[string]string{"a": "1", "Framework": "net6.0"})
	clauses := []string{"a", "b", "a:1", "a:2", "b:1", "a:", "Framework:net6.0", "Framework:net8.0^"}

	for _, clause := range clauses {
		t.Run(clause, func(t *testing.T) {
			assert.Equal(t, !requisite.Evaluate(store, clause), requisite.Evaluate(store, "!"+clause))
		})
	}
}

func TestEvaluate_LeftFold(t *testing.T) {
	// A and C defined, B not
	store := variables.FromMap(map[string]string{"A": "", "C": ""})

	tests := []struct {
		expr string
		want bool
	}{
		{"A|B&C", true},
		{"B&C|A", true},
		{"B|A&C", true},
		// conventional precedence would give true for these two
		{"A|B&B", false},
		{"A | C & B", false},
		{"B&B|A", true},
		{"A & & C", true},
		{"| A", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, requisite.Evaluate(store, tt.expr))
		})
	}
}
