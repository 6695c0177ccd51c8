package routepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPath    string
		wantSearch  string
		wantChanged bool
		wantErr     error
	}{
		{name: "root", input: "/", wantPath: "/"},
		{name: "empty", input: "", wantPath: "/", wantChanged: true},
		{name: "no leading slash", input: "about", wantPath: "/about", wantChanged: true},
		{name: "trailing slash", input: "/flat/", wantPath: "/flat", wantChanged: true},
		{name: "collapse slashes", input: "/nested//x", wantPath: "/nested/x", wantChanged: true},
		{name: "dot", input: "/a/./b", wantPath: "/a/b", wantChanged: true},
		{name: "dot dot", input: "/a/b/../c", wantPath: "/a/c", wantChanged: true},
		{name: "dot dot to root", input: "/a/..", wantPath: "/", wantChanged: true},
		{name: "search kept", input: "/yes/loader?x=1&y", wantPath: "/yes/loader", wantSearch: "x=1&y"},
		{name: "fragment dropped", input: "/flat#top", wantPath: "/flat"},
		{name: "valid escape", input: "/a%20b", wantPath: "/a%20b"},
		{name: "escapes root", input: "/../secret", wantErr: ErrPathEscapesRoot},
		{name: "backslash", input: "/a\\b", wantErr: ErrBackslashInPath},
		{name: "encoded nul", input: "/a%00", wantErr: ErrNullByteInPath},
		{name: "bad escape", input: "/a%GG", wantErr: ErrInvalidPercentEscape},
		{name: "truncated escape", input: "/a%2", wantErr: ErrInvalidPercentEscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, got.Path)
			assert.Equal(t, tt.wantSearch, got.Search)
			assert.Equal(t, tt.wantChanged, got.Changed)
		})
	}
}

func TestCanonicalString(t *testing.T) {
	c, err := Canonicalize("/nested/?index")
	require.NoError(t, err)
	assert.Equal(t, "/nested?index", c.String())
	assert.True(t, c.Query().Has("index"))
}

func TestValidateNavPath(t *testing.T) {
	for _, bad := range []string{"http://evil.test/", "https://evil.test", "//evil.test", "relative"} {
		_, err := ValidateNavPath(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}

	c, err := ValidateNavPath("/yes//loader/")
	require.NoError(t, err)
	assert.Equal(t, "/yes/loader", c.Path)
}

func TestSplitJoin(t *testing.T) {
	assert.Nil(t, Split("/"))
	assert.Equal(t, []string{"flat", "swig"}, Split("/flat/swig"))
	assert.Equal(t, "/flat/swig", Join([]string{"flat", "swig"}))
	assert.Equal(t, "/", Join(nil))
}

func TestDecodeSegment(t *testing.T) {
	got, err := DecodeSegment("a%20b", false)
	require.NoError(t, err)
	assert.Equal(t, "a b", got)

	_, err = DecodeSegment("a%2Fb", false)
	assert.ErrorIs(t, err, ErrEncodedSlashInSegment)

	got, err = DecodeSegment("a%2Fb", true)
	require.NoError(t, err)
	assert.Equal(t, "a/b", got)
}

func TestDecodeSuffix(t *testing.T) {
	got, err := DecodeSuffix([]string{"twisted", "sugar%21"})
	require.NoError(t, err)
	assert.Equal(t, "twisted/sugar!", got)

	got, err = DecodeSuffix(nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
