package gitsnip

import (
	"errors"
	"testing"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelector_SingleKind(t *testing.T) {
	tests := []struct {
		name      string
		branch    string
		tag       string
		commit    string
		wantKind  SelectorKind
		wantValue string
	}{
		{name: "branch", branch: "develop", wantKind: SelectorBranch, wantValue: "develop"},
		{name: "tag", tag: "v1.0.0", wantKind: SelectorTag, wantValue: "v1.0.0"},
		{name: "commit", commit: "abc123", wantKind: SelectorCommit, wantValue: "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := NewSelector(tt.branch, tt.tag, tt.commit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, sel.Kind)
			assert.Equal(t, tt.wantValue, sel.Value)
			assert.False(t, sel.IsDefault())
		})
	}
}

func TestNewSelector_Default(t *testing.T) {
	sel, err := NewSelector("", "", "")
	require.NoError(t, err)
	assert.True(t, sel.IsDefault())
	assert.Equal(t, "default-branch", sel.String())
}

func TestNewSelector_Conflicting(t *testing.T) {
	tests := []struct {
		name   string
		branch string
		tag    string
		commit string
	}{
		{name: "branch and tag", branch: "main", tag: "v1.0.0"},
		{name: "branch and commit", branch: "main", commit: "abc123"},
		{name: "tag and commit", tag: "v1.0.0", commit: "abc123"},
		{name: "all three", branch: "main", tag: "v1.0.0", commit: "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSelector(tt.branch, tt.tag, tt.commit)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConflictingSelectors))
			assert.Equal(t, platformerrors.CodeInvalidInput, platformerrors.GetCode(err))
		})
	}
}

func TestSelector_String(t *testing.T) {
	assert.Equal(t, "branch:main", BranchSelector("main").String())
	assert.Equal(t, "tag:v1.0.0", TagSelector("v1.0.0").String())
	assert.Equal(t, "commit:abc123", CommitSelector("abc123").String())
}
