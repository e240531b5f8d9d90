package jsgf_test

import (
	"errors"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/jsgf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const changeLight = `#JSGF V1.0;
grammar ChangeLight;

// lights
public <ChangeLight> = turn (on | off){state} [the] (light | lamp)
                     | <ChangeLightColor.ChangeLightColor>;
/* helper
   rule */
<color> = ($colors){color};
`

func TestParse_ChangeLight(t *testing.T) {
	g, err := jsgf.Parse("ignored", changeLight)
	require.NoError(t, err)

	assert.Equal(t, "ChangeLight", g.Name)
	require.Len(t, g.Rules, 2)

	root, ok := g.Root()
	require.True(t, ok)
	assert.True(t, root.Public)
	assert.Equal(t, 5, root.Line)

	want := jsgf.Alternative{Items: []jsgf.Expr{
		jsgf.Sequence{Items: []jsgf.Expr{
			jsgf.Word{Text: "turn"},
			jsgf.Tagged{
				Item: jsgf.Alternative{Items: []jsgf.Expr{jsgf.Word{Text: "on"}, jsgf.Word{Text: "off"}}},
				Tag:  "state",
			},
			jsgf.Optional{Item: jsgf.Word{Text: "the"}},
			jsgf.Alternative{Items: []jsgf.Expr{jsgf.Word{Text: "light"}, jsgf.Word{Text: "lamp"}}},
		}},
		jsgf.RuleRef{Grammar: "ChangeLightColor", Rule: "ChangeLightColor"},
	}}
	assert.Equal(t, want, root.Expr)

	color, ok := g.Rule("color")
	require.True(t, ok)
	assert.False(t, color.Public)
	assert.Equal(t, jsgf.Tagged{Item: jsgf.SlotRef{Name: "colors"}, Tag: "color"}, color.Expr)
	assert.Equal(t, "ChangeLight.color", g.Qualified("color"))
}

func TestParse_NameFromCaller(t *testing.T) {
	g, err := jsgf.Parse("GetTime", "public <GetTime> = what time is it;")
	require.NoError(t, err)
	assert.Equal(t, "GetTime", g.Name)
	_, ok := g.Root()
	assert.True(t, ok)
}

func TestParse_Operators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want jsgf.Expr
	}{
		{
			name: "word substitution",
			src:  "ten:10",
			want: jsgf.Word{Text: "ten", Sub: "10", HasSub: true},
		},
		{
			name: "dropped word",
			src:  "please: stop",
			want: jsgf.Sequence{Items: []jsgf.Expr{
				jsgf.Word{Text: "please", HasSub: true},
				jsgf.Word{Text: "stop"},
			}},
		},
		{
			name: "group rewrite",
			src:  "(forty two):42",
			want: jsgf.Substituted{
				Item: jsgf.Sequence{Items: []jsgf.Expr{jsgf.Word{Text: "forty"}, jsgf.Word{Text: "two"}}},
				Sub:  "42",
			},
		},
		{
			name: "tagged substitution",
			src:  "(ten:10){minutes}",
			want: jsgf.Tagged{Item: jsgf.Word{Text: "ten", Sub: "10", HasSub: true}, Tag: "minutes"},
		},
		{
			name: "bounded repetition",
			src:  "(very){1,3} good",
			want: jsgf.Sequence{Items: []jsgf.Expr{
				jsgf.Repeat{Item: jsgf.Word{Text: "very"}, Min: 1, Max: 3},
				jsgf.Word{Text: "good"},
			}},
		},
		{
			name: "exact repetition",
			src:  "ha{2}",
			want: jsgf.Repeat{Item: jsgf.Word{Text: "ha"}, Min: 2, Max: 2},
		},
		{
			name: "local rule and slot",
			src:  "<hours> $units",
			want: jsgf.Sequence{Items: []jsgf.Expr{jsgf.RuleRef{Rule: "hours"}, jsgf.SlotRef{Name: "units"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jsgf.ParseExpression(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unbalanced paren", "public <A> = (a b;"},
		{"unbalanced bracket", "public <A> = [a;"},
		{"stray closer", "public <A> = a );"},
		{"kleene star", "public <A> = a*;"},
		{"kleene plus", "public <A> = (a)+;"},
		{"empty alternative", "public <A> = a | | b;"},
		{"empty optional", "public <A> = [];"},
		{"duplicate rule", "public <A> = a;\npublic <A> = b;"},
		{"unknown operator", "public <A> = a / b;"},
		{"tag without item", "public <A> = {x} a;"},
		{"inverted repetition", "public <A> = a{3,1};"},
		{"unterminated rule reference", "public <A> = <b;"},
		{"unterminated comment", "/* open\npublic <A> = a;"},
		{"missing semicolon", "public <A> = a"},
		{"qualified rule name", "public <G.A> = a;"},
		{"late declaration", "public <A> = a;\ngrammar A;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jsgf.Parse("A", tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrGrammarSyntax), "got %v", err)

			var se *domain.SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Positive(t, se.Line)
			assert.Positive(t, se.Column)
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := jsgf.Parse("A", "public <A> = a\n  | (b;\n")
	var se *domain.SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "A", se.Grammar)
	assert.Equal(t, 2, se.Line)
	assert.Equal(t, 7, se.Column)
	assert.Contains(t, se.Msg, "unbalanced")
}
